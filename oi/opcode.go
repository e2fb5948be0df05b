package oi

// Open Interface command opcodes.
type Opcode byte

const (
	OpReset             Opcode = 7
	OpStart             Opcode = 128
	OpBaud              Opcode = 129
	OpSafe              Opcode = 131
	OpFull              Opcode = 132
	OpPower             Opcode = 133
	OpSpot              Opcode = 134
	OpClean             Opcode = 135
	OpMax               Opcode = 136
	OpDrive             Opcode = 137
	OpMotors            Opcode = 138
	OpLeds              Opcode = 139
	OpSong              Opcode = 140
	OpPlay              Opcode = 141
	OpSensors           Opcode = 142
	OpSeekDock          Opcode = 143
	OpMotorsPwm         Opcode = 144
	OpDriveDirect       Opcode = 145
	OpDrivePwm          Opcode = 146
	OpStream            Opcode = 148
	OpQueryList         Opcode = 149
	OpStreamPauseResume Opcode = 150
	OpLedsScheduling    Opcode = 162
	OpLedsDigitRaw      Opcode = 163
	OpLedsDigitAscii    Opcode = 164
	OpButtons           Opcode = 165
	OpSchedule          Opcode = 167
	OpSetDayTime        Opcode = 168
	OpStop              Opcode = 173
)

func (op Opcode) cmd(data ...byte) []byte {
	return append([]byte{byte(op)}, data...)
}

func cmdSensors(id PacketID) []byte {
	return OpSensors.cmd(byte(id))
}

func cmdIDList(op Opcode, ids []PacketID) []byte {
	b := make([]byte, 0, 2+len(ids))
	b = append(b, byte(op), byte(len(ids)))
	for _, id := range ids {
		b = append(b, byte(id))
	}
	return b
}

func cmdQueryList(ids []PacketID) []byte { return cmdIDList(OpQueryList, ids) }
func cmdStream(ids []PacketID) []byte    { return cmdIDList(OpStream, ids) }

func cmdStreamPause() []byte  { return OpStreamPauseResume.cmd(0) }
func cmdStreamResume() []byte { return OpStreamPauseResume.cmd(1) }
