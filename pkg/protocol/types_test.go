package protocol

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
)

func TestVarInt(t *testing.T) {
	tests := []struct {
		value    int32
		expected []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{127, []byte{0x7F}},
		{128, []byte{0x80, 0x01}},
		{255, []byte{0xFF, 0x01}},
		{25565, []byte{0xDD, 0xC7, 0x01}},
		{2097151, []byte{0xFF, 0xFF, 0x7F}},
		{2147483647, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x07}},
		{-1, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x0F}},
		{-2147483648, []byte{0x80, 0x80, 0x80, 0x80, 0x08}},
	}

	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			var buf bytes.Buffer
			if _, err := WriteVarInt(&buf, tt.value); err != nil {
				t.Fatalf("WriteVarInt(%d) error: %v", tt.value, err)
			}
			if !bytes.Equal(buf.Bytes(), tt.expected) {
				t.Errorf("WriteVarInt(%d) = %v, want %v", tt.value, buf.Bytes(), tt.expected)
			}

			r := bytes.NewReader(tt.expected)
			val, n, err := ReadVarInt(r)
			if err != nil {
				t.Fatalf("ReadVarInt error: %v", err)
			}
			if val != tt.value {
				t.Errorf("ReadVarInt = %d, want %d", val, tt.value)
			}
			if n != len(tt.expected) {
				t.Errorf("ReadVarInt bytes read = %d, want %d", n, len(tt.expected))
			}
		})
	}
}

func TestVarIntSize(t *testing.T) {
	tests := []struct {
		value int32
		size  int
	}{
		{0, 1},
		{1, 1},
		{127, 1},
		{128, 2},
		{25565, 3},
		{2097151, 3},
		{2147483647, 5},
		{-1, 5},
	}

	for _, tt := range tests {
		if got := VarIntSize(tt.value); got != tt.size {
			t.Errorf("VarIntSize(%d) = %d, want %d", tt.value, got, tt.size)
		}
	}
}

func TestVarLong(t *testing.T) {
	tests := []int64{0, 1, -1, 9223372036854775807, -9223372036854775808}

	for _, v := range tests {
		var buf bytes.Buffer
		if _, err := WriteVarLong(&buf, v); err != nil {
			t.Fatalf("WriteVarLong(%d) error: %v", v, err)
		}
		r := bytes.NewReader(buf.Bytes())
		got, _, err := ReadVarLong(r)
		if err != nil {
			t.Fatalf("ReadVarLong error: %v", err)
		}
		if got != v {
			t.Errorf("ReadVarLong = %d, want %d", got, v)
		}
	}
}

func TestVarShort(t *testing.T) {
	tests := []int32{0, 1, 127, 32767, 32768, 1<<23 - 1}

	for _, v := range tests {
		var buf bytes.Buffer
		if err := WriteVarShort(&buf, v); err != nil {
			t.Fatalf("WriteVarShort(%d) error: %v", v, err)
		}
		r := bytes.NewReader(buf.Bytes())
		got, err := ReadVarShort(r)
		if err != nil {
			t.Fatalf("ReadVarShort error: %v", err)
		}
		if got != v {
			t.Errorf("ReadVarShort = %d, want %d", got, v)
		}
	}
}

func TestString(t *testing.T) {
	tests := []string{
		"",
		"Hello",
		"Hello, World!",
		"日本語テスト",
	}

	for _, s := range tests {
		var buf bytes.Buffer
		if err := WriteString(&buf, s); err != nil {
			t.Fatalf("WriteString(%q) error: %v", s, err)
		}

		r := bytes.NewReader(buf.Bytes())
		got, err := ReadString(r)
		if err != nil {
			t.Fatalf("ReadString error: %v", err)
		}
		if got != s {
			t.Errorf("ReadString = %q, want %q", got, s)
		}
	}
}

func TestStringTooLong(t *testing.T) {
	var buf bytes.Buffer
	WriteVarInt(&buf, maxStringBytes+1)
	if _, err := ReadString(&buf); err == nil {
		t.Fatalf("ReadString: expected error for over-long string")
	}
}

func TestInt32(t *testing.T) {
	values := []int32{0, 1, -1, 2147483647, -2147483648, 42}
	for _, v := range values {
		var buf bytes.Buffer
		if err := WriteInt32(&buf, v); err != nil {
			t.Fatalf("WriteInt32(%d) error: %v", v, err)
		}
		r := bytes.NewReader(buf.Bytes())
		got, err := ReadInt32(r)
		if err != nil {
			t.Fatalf("ReadInt32 error: %v", err)
		}
		if got != v {
			t.Errorf("ReadInt32 = %d, want %d", got, v)
		}
	}
}

func TestFloat64(t *testing.T) {
	values := []float64{0, 1.5, -1.5, 3.14159265}
	for _, v := range values {
		var buf bytes.Buffer
		if err := WriteFloat64(&buf, v); err != nil {
			t.Fatalf("WriteFloat64(%f) error: %v", v, err)
		}
		r := bytes.NewReader(buf.Bytes())
		got, err := ReadFloat64(r)
		if err != nil {
			t.Fatalf("ReadFloat64 error: %v", err)
		}
		if got != v {
			t.Errorf("ReadFloat64 = %f, want %f", got, v)
		}
	}
}

func TestBool(t *testing.T) {
	for _, v := range []bool{true, false} {
		var buf bytes.Buffer
		if err := WriteBool(&buf, v); err != nil {
			t.Fatalf("WriteBool(%v) error: %v", v, err)
		}
		r := bytes.NewReader(buf.Bytes())
		got, err := ReadBool(r)
		if err != nil {
			t.Fatalf("ReadBool error: %v", err)
		}
		if got != v {
			t.Errorf("ReadBool = %v, want %v", got, v)
		}
	}
}

func TestUUID(t *testing.T) {
	id := uuid.New()
	var buf bytes.Buffer
	if err := WriteUUID(&buf, id); err != nil {
		t.Fatalf("WriteUUID error: %v", err)
	}
	r := bytes.NewReader(buf.Bytes())
	got, err := ReadUUID(r)
	if err != nil {
		t.Fatalf("ReadUUID error: %v", err)
	}
	if got != id {
		t.Errorf("ReadUUID = %v, want %v", got, id)
	}
}

func TestPositionPre114(t *testing.T) {
	tests := []Position{
		{0, 0, 0},
		{8, 64, 8},
		{-1, 0, -1},
		{-30000000, -2048, 30000000},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		if err := WritePosition(&buf, tt, 47); err != nil {
			t.Fatalf("WritePosition error: %v", err)
		}
		r := bytes.NewReader(buf.Bytes())
		got, err := ReadPosition(r, 47)
		if err != nil {
			t.Fatalf("ReadPosition error: %v", err)
		}
		if got != tt {
			t.Errorf("ReadPosition = %+v, want %+v", got, tt)
		}
	}
}

func TestPositionPost114(t *testing.T) {
	tests := []Position{
		{0, 0, 0},
		{8, 64, 8},
		{-1, 0, -1},
		{-30000000, -2048, 30000000},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		if err := WritePosition(&buf, tt, 757); err != nil {
			t.Fatalf("WritePosition error: %v", err)
		}
		r := bytes.NewReader(buf.Bytes())
		got, err := ReadPosition(r, 757)
		if err != nil {
			t.Fatalf("ReadPosition error: %v", err)
		}
		if got != tt {
			t.Errorf("ReadPosition = %+v, want %+v", got, tt)
		}
	}
}

func TestFixedPoint(t *testing.T) {
	if got := FixedPoint5(FixedPoint5Encode(12.5)); got != 12.5 {
		t.Errorf("FixedPoint5 round trip = %f, want 12.5", got)
	}
	if got := FixedPoint12(FixedPoint12Encode(1.25)); got != 1.25 {
		t.Errorf("FixedPoint12 round trip = %f, want 1.25", got)
	}
}

func TestLenPrefixedCount(t *testing.T) {
	for _, kind := range []LengthPrefixKind{LengthVarInt, LengthInt16, LengthInt32, LengthUint8} {
		var buf bytes.Buffer
		if err := WriteLenPrefixedCount(&buf, kind, 42); err != nil {
			t.Fatalf("WriteLenPrefixedCount(%v) error: %v", kind, err)
		}
		got, err := ReadLenPrefixedCount(&buf, kind)
		if err != nil {
			t.Fatalf("ReadLenPrefixedCount(%v) error: %v", kind, err)
		}
		if got != 42 {
			t.Errorf("ReadLenPrefixedCount(%v) = %d, want 42", kind, got)
		}
	}
}

func TestLenPrefixedCountBool(t *testing.T) {
	var buf bytes.Buffer
	WriteLenPrefixedCount(&buf, LengthBool, 1)
	got, err := ReadLenPrefixedCount(&buf, LengthBool)
	if err != nil {
		t.Fatalf("ReadLenPrefixedCount(bool) error: %v", err)
	}
	if got != 1 {
		t.Errorf("ReadLenPrefixedCount(bool) = %d, want 1", got)
	}
}
