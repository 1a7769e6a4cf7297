package command

import (
	"testing"

	"github.com/elektrokombinacija/nanobot-assembly/internal/geometry"

	"github.com/stretchr/testify/require"
)

func near(dx, dy, dz int) geometry.CoordDiff {
	return geometry.CoordDiff{Coord: geometry.Coord{X: dx, Y: dy, Z: dz}}
}

func TestConstructorsRejectOutOfRange(t *testing.T) {
	if _, err := NewSMove(geometry.LongD(geometry.AxisX, 16)); err != ErrInvalidLinearDiff {
		t.Errorf("SMove should reject |v|>15, got %v", err)
	}
	if _, err := NewLMove(geometry.Short(geometry.AxisX, 6), geometry.Short(geometry.AxisY, 1)); err != ErrInvalidLinearDiff {
		t.Errorf("LMove should reject |v|>5, got %v", err)
	}
	if _, err := NewFill(near(1, 1, 1)); err != ErrNotNear {
		t.Errorf("Fill should reject non-near offset, got %v", err)
	}
	if _, err := NewFill(near(1, 0, 0)); err != nil {
		t.Errorf("Fill should accept a near offset, got %v", err)
	}
}

func buildScript() []Command {
	smove, _ := NewSMove(geometry.LongD(geometry.AxisX, -7))
	lmove, _ := NewLMove(geometry.Short(geometry.AxisY, 3), geometry.Short(geometry.AxisZ, -2))
	fission, _ := NewFission(near(1, 0, 0), 19)
	fill, _ := NewFill(near(0, 1, 0))
	void, _ := NewVoid(near(0, -1, 0))
	fusionP, _ := NewFusionP(near(1, 1, 0))
	fusionS, _ := NewFusionS(near(-1, -1, 0))
	gfill, _ := NewGFill(near(1, 0, 0), geometry.CoordDiff{Coord: geometry.Coord{X: 20, Y: -15, Z: 3}})
	gvoid, _ := NewGVoid(near(0, 1, 0), geometry.CoordDiff{Coord: geometry.Coord{X: -20, Y: 15, Z: -3}})
	return []Command{
		{Kind: Halt}, {Kind: Wait}, {Kind: Flip},
		smove, lmove, fission, fill, void, fusionP, fusionS, gfill, gvoid,
	}
}

func TestCodecRoundTrip(t *testing.T) {
	script := buildScript()
	bs, err := EncodeAll(script)
	if err != nil {
		t.Fatalf("EncodeAll: %v", err)
	}
	decoded, err := DecodeAll(bs)
	if err != nil {
		t.Fatalf("DecodeAll: %v", err)
	}
	require.Equal(t, script, decoded, "decode(encode(script)) should reproduce every field of every command")
	bs2, err := EncodeAll(decoded)
	if err != nil {
		t.Fatalf("re-EncodeAll: %v", err)
	}
	if string(bs2) != string(bs) {
		t.Error("encode(decode(bs)) != bs")
	}
}

func TestDecodeEmptyIsEmpty(t *testing.T) {
	cmds, err := DecodeAll(nil)
	if err != nil || len(cmds) != 0 {
		t.Errorf("decoding an empty stream should yield an empty script, got %v, %v", cmds, err)
	}
}

func TestDecodeTruncatedStreamErrors(t *testing.T) {
	smove, _ := NewSMove(geometry.LongD(geometry.AxisX, 5))
	bs, _ := Encode(nil, smove)
	if _, err := DecodeAll(bs[:1]); err == nil {
		t.Error("truncated SMove record should fail to decode")
	}
}
