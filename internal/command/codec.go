package command

import (
	"errors"

	"github.com/elektrokombinacija/nanobot-assembly/internal/geometry"
)

// ErrCommandEncode is returned when a Command cannot be encoded (an
// internally invalid value slipped past its constructor, or a GFill/GVoid
// far offset overflows the one-byte-per-axis on-disk representation).
var ErrCommandEncode = errors.New("command: encode failed")

// ErrCommandDecode is returned when a byte stream does not contain a valid
// command record at the current position.
var ErrCommandDecode = errors.New("command: decode failed")

// nearCode/axis tags for single-byte near-commands. Fill/Void/Fission/
// FusionP/FusionS/GFill/GVoid each place a 5-bit near code in the high bits
// and one of these 7 distinct 3-bit tags in the low bits; the 8th possible
// 3-bit value (0b100) is reserved for SMove/LMove, whose own low nibble
// (0100 / 1100) is otherwise unambiguous against it. Halt/Wait/Flip are
// matched as exact full bytes before any tag dispatch, which is safe
// because a near code can never reach 31 (max legal code is 26), so no
// valid near-command byte collides with 0xFF/0xFE/0xFD.
const (
	tagGVoid   = 0b000
	tagGFill   = 0b001
	tagVoid    = 0b010
	tagFill    = 0b011
	tagFission = 0b101
	tagFusionS = 0b110
	tagFusionP = 0b111
	tagMove    = 0b100 // shared low-3 prefix for SMove (nibble 0100) / LMove (nibble 1100)
)

func axisCode(a geometry.Axis) byte {
	switch a {
	case geometry.AxisX:
		return 0b01
	case geometry.AxisY:
		return 0b10
	default:
		return 0b11
	}
}

func axisFromCode(code byte) (geometry.Axis, bool) {
	switch code {
	case 0b01:
		return geometry.AxisX, true
	case 0b10:
		return geometry.AxisY, true
	case 0b11:
		return geometry.AxisZ, true
	default:
		return 0, false
	}
}

func nearEncode(d geometry.CoordDiff) byte {
	return byte((d.X+1)*9 + (d.Y+1)*3 + (d.Z + 1))
}

func nearDecode(code byte) geometry.CoordDiff {
	v := int(code)
	dx := v/9 - 1
	v %= 9
	dy := v/3 - 1
	dz := v%3 - 1
	return geometry.CoordDiff{Coord: geometry.Coord{X: dx, Y: dy, Z: dz}}
}

// Encode serializes a single command onto buf, returning the extended
// slice.
func Encode(buf []byte, c Command) ([]byte, error) {
	switch c.Kind {
	case Halt:
		return append(buf, 0xFF), nil
	case Wait:
		return append(buf, 0xFE), nil
	case Flip:
		return append(buf, 0xFD), nil
	case SMove:
		if c.Long.Value < -15 || c.Long.Value > 15 {
			return nil, ErrCommandEncode
		}
		b0 := (axisCode(c.Long.Axis) << 4) | 0b0100
		b1 := byte(c.Long.Value + 15)
		return append(buf, b0, b1), nil
	case LMove:
		if c.Short1.Value < -5 || c.Short1.Value > 5 || c.Short2.Value < -5 || c.Short2.Value > 5 {
			return nil, ErrCommandEncode
		}
		b0 := (axisCode(c.Short1.Axis) << 6) | (axisCode(c.Short2.Axis) << 4) | 0b1100
		b1 := byte((c.Short2.Value+5)<<4) | byte(c.Short1.Value+5)
		return append(buf, b0, b1), nil
	case Fission:
		if !c.Near.IsNear() {
			return nil, ErrCommandEncode
		}
		b0 := (nearEncode(c.Near) << 3) | tagFission
		return append(buf, b0, c.SplitM), nil
	case Fill:
		if !c.Near.IsNear() {
			return nil, ErrCommandEncode
		}
		return append(buf, (nearEncode(c.Near)<<3)|tagFill), nil
	case Void:
		if !c.Near.IsNear() {
			return nil, ErrCommandEncode
		}
		return append(buf, (nearEncode(c.Near)<<3)|tagVoid), nil
	case FusionP:
		if !c.Near.IsNear() {
			return nil, ErrCommandEncode
		}
		return append(buf, (nearEncode(c.Near)<<3)|tagFusionP), nil
	case FusionS:
		if !c.Near.IsNear() {
			return nil, ErrCommandEncode
		}
		return append(buf, (nearEncode(c.Near)<<3)|tagFusionS), nil
	case GFill, GVoid:
		if !c.Near.IsNear() || !c.Far.IsFar() {
			return nil, ErrCommandEncode
		}
		if c.Far.X < -30 || c.Far.X > 30 || c.Far.Y < -30 || c.Far.Y > 30 || c.Far.Z < -30 || c.Far.Z > 30 {
			return nil, ErrCommandEncode
		}
		tag := byte(tagGFill)
		if c.Kind == GVoid {
			tag = tagGVoid
		}
		b0 := (nearEncode(c.Near) << 3) | tag
		return append(buf, b0, byte(c.Far.X+30), byte(c.Far.Y+30), byte(c.Far.Z+30)), nil
	default:
		return nil, ErrCommandEncode
	}
}

// EncodeAll serializes an entire command script.
func EncodeAll(cmds []Command) ([]byte, error) {
	var buf []byte
	var err error
	for _, c := range cmds {
		buf, err = Encode(buf, c)
		if err != nil {
			return nil, err
		}
	}
	return buf, nil
}

// DecodeOne reads a single command starting at bs[0], returning the command
// and the number of bytes consumed.
func DecodeOne(bs []byte) (Command, int, error) {
	if len(bs) == 0 {
		return Command{}, 0, ErrCommandDecode
	}
	b0 := bs[0]
	switch b0 {
	case 0xFF:
		return Command{Kind: Halt}, 1, nil
	case 0xFE:
		return Command{Kind: Wait}, 1, nil
	case 0xFD:
		return Command{Kind: Flip}, 1, nil
	}

	low3 := b0 & 0b111
	if low3 == tagMove {
		lowNibble := b0 & 0b1111
		switch lowNibble {
		case 0b0100: // SMove
			if len(bs) < 2 {
				return Command{}, 0, ErrCommandDecode
			}
			axis, ok := axisFromCode((b0 >> 4) & 0b11)
			if !ok {
				return Command{}, 0, ErrCommandDecode
			}
			v := int(bs[1]) - 15
			cmd, err := NewSMove(geometry.LongD(axis, v))
			if err != nil {
				return Command{}, 0, ErrCommandDecode
			}
			return cmd, 2, nil
		case 0b1100: // LMove
			if len(bs) < 2 {
				return Command{}, 0, ErrCommandDecode
			}
			axis1, ok1 := axisFromCode((b0 >> 6) & 0b11)
			axis2, ok2 := axisFromCode((b0 >> 4) & 0b11)
			if !ok1 || !ok2 {
				return Command{}, 0, ErrCommandDecode
			}
			v1 := int(bs[1]&0b1111) - 5
			v2 := int(bs[1]>>4) - 5
			cmd, err := NewLMove(geometry.Short(axis1, v1), geometry.Short(axis2, v2))
			if err != nil {
				return Command{}, 0, ErrCommandDecode
			}
			return cmd, 2, nil
		default:
			return Command{}, 0, ErrCommandDecode
		}
	}

	near := nearDecode(b0 >> 3)
	switch low3 {
	case tagFission:
		if len(bs) < 2 {
			return Command{}, 0, ErrCommandDecode
		}
		cmd, err := NewFission(near, bs[1])
		if err != nil {
			return Command{}, 0, ErrCommandDecode
		}
		return cmd, 2, nil
	case tagFill:
		cmd, err := NewFill(near)
		if err != nil {
			return Command{}, 0, ErrCommandDecode
		}
		return cmd, 1, nil
	case tagVoid:
		cmd, err := NewVoid(near)
		if err != nil {
			return Command{}, 0, ErrCommandDecode
		}
		return cmd, 1, nil
	case tagFusionP:
		cmd, err := NewFusionP(near)
		if err != nil {
			return Command{}, 0, ErrCommandDecode
		}
		return cmd, 1, nil
	case tagFusionS:
		cmd, err := NewFusionS(near)
		if err != nil {
			return Command{}, 0, ErrCommandDecode
		}
		return cmd, 1, nil
	case tagGFill, tagGVoid:
		if len(bs) < 4 {
			return Command{}, 0, ErrCommandDecode
		}
		far := geometry.CoordDiff{Coord: geometry.Coord{
			X: int(bs[1]) - 30,
			Y: int(bs[2]) - 30,
			Z: int(bs[3]) - 30,
		}}
		var cmd Command
		var err error
		if low3 == tagGFill {
			cmd, err = NewGFill(near, far)
		} else {
			cmd, err = NewGVoid(near, far)
		}
		if err != nil {
			return Command{}, 0, ErrCommandDecode
		}
		return cmd, 4, nil
	default:
		return Command{}, 0, ErrCommandDecode
	}
}

// DecodeAll decodes an entire byte stream into a flat command sequence,
// which the tick loop dispatches round-robin to active bots in ascending
// bid order.
func DecodeAll(bs []byte) ([]Command, error) {
	var cmds []Command
	for len(bs) > 0 {
		cmd, n, err := DecodeOne(bs)
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, cmd)
		bs = bs[n:]
	}
	return cmds, nil
}
