package value

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChunkWrite_LineTableRunLengthEncodes(t *testing.T) {
	c := NewChunk()
	c.Write(0x01, 1)
	c.Write(0x02, 1)
	c.Write(0x03, 2)
	c.Write(0x04, 2)
	c.Write(0x05, 2)

	require.Equal(t, 1, c.GetLine(0))
	require.Equal(t, 1, c.GetLine(1))
	require.Equal(t, 2, c.GetLine(2))
	require.Equal(t, 2, c.GetLine(3))
	require.Equal(t, 2, c.GetLine(4))
}

func TestWriteConstant_ShortFormUnder256(t *testing.T) {
	c := NewChunk()
	c.WriteConstant(Number(7), 1)
	require.Equal(t, []byte{byte(OpConstant), 0}, c.Code)
	require.Len(t, c.Constants, 1)
}

func TestWriteConstant_LongFormPast255(t *testing.T) {
	c := NewChunk()
	for i := 0; i < 256; i++ {
		c.AddConstant(Number(float64(i)))
	}
	c.WriteConstant(Number(999), 1)
	require.Equal(t, OpConstantLong, OpCode(c.Code[0]))
	idx := int(c.Code[1])<<8 | int(c.Code[2])
	require.Equal(t, 256, idx)
	require.Equal(t, Number(999), c.Constants[idx])
}

func TestAddConstant_NeverDeduplicates(t *testing.T) {
	c := NewChunk()
	a := c.AddConstant(Number(1))
	b := c.AddConstant(Number(1))
	require.NotEqual(t, a, b)
	require.Len(t, c.Constants, 2)
}
