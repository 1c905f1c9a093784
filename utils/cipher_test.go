package utils

import "testing"

func TestEncodeDecodeRoundTrip(t *testing.T) {
	inputs := []string{"A1", "J10", "E5", "Hello, World!"}
	for _, encoding := range AllEncodings {
		for _, input := range inputs {
			encoded := Encode(input, encoding)
			decoded, err := Decode(encoded, encoding)
			if err != nil {
				t.Fatalf("%s decode %q: %v", encoding, encoded, err)
			}
			if decoded != input {
				t.Errorf("%s round trip: got %q want %q", encoding, decoded, input)
			}
		}
	}
}

func TestEncodeKnownValues(t *testing.T) {
	tests := []struct {
		encoding EncodingType
		input    string
		want     string
	}{
		{EncodingBase64, "A1", "QTE="},
		{EncodingHex, "A1", "4131"},
		{EncodingROT13, "A1", "N1"},
		{EncodingBinary, "A1", "01000001 00110001"},
		{EncodingASCII, "A1", "65 49"},
	}
	for _, tt := range tests {
		if got := Encode(tt.input, tt.encoding); got != tt.want {
			t.Errorf("Encode(%q, %s) = %q, want %q", tt.input, tt.encoding, got, tt.want)
		}
	}
}

func TestROT13PreservesCaseAndDigits(t *testing.T) {
	if got := ROT13("Hello123"); got != "Uryyb123" {
		t.Errorf("ROT13(Hello123) = %q, want Uryyb123", got)
	}
	if got := ROT13(ROT13("J10")); got != "J10" {
		t.Errorf("double ROT13 should be identity, got %q", got)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := Decode("not base64!!", EncodingBase64); err == nil {
		t.Error("expected base64 decode error")
	}
	if _, err := Decode("zz", EncodingHex); err == nil {
		t.Error("expected hex decode error")
	}
	if _, err := Decode("01000001 2", EncodingBinary); err == nil {
		t.Error("expected binary decode error")
	}
	if _, err := Decode("300", EncodingASCII); err == nil {
		t.Error("expected ascii overflow error")
	}
	if _, err := Decode("A1", EncodingType("caesar")); err == nil {
		t.Error("expected unknown encoding error")
	}
}
