package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizePhoneNumber(t *testing.T) {
	tests := []struct {
		name        string
		phone       string
		countryCode string
		want        string
		wantErr     bool
	}{
		{name: "india with prefix and spaces", phone: "+91 88002 81734", want: "+918800281734"},
		{name: "india without prefix", phone: "88002 81734", want: "+918800281734"},
		{name: "leading zero trunk prefix", phone: "0 88002 81734", want: "+918800281734"},
		{name: "double zero international", phone: "0091 8800281734", want: "+918800281734"},
		{name: "usa punctuation", phone: "+1 (123) 456-7890", want: "+11234567890"},
		{name: "usa default code", phone: "123-456-7890", countryCode: "+1", want: "+11234567890"},
		{name: "uk trunk prefix", phone: "07911 123456", countryCode: "+44", want: "+447911123456"},
		{name: "singapore", phone: "91234567", countryCode: "+65", want: "+6591234567"},
		{name: "letters only", phone: "invalid", wantErr: true},
		{name: "too short", phone: "12345", wantErr: true},
		{name: "empty", phone: "   ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizePhoneNumber(tt.phone, tt.countryCode)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsKind(err, KindValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeGSTIN(t *testing.T) {
	got, err := NormalizeGSTIN(" 27aapfu0939f1zv ")
	require.NoError(t, err)
	assert.Equal(t, "27AAPFU0939F1ZV", got)

	for _, bad := range []string{"", "27AAPFU0939F1Z", "27AAPFU0939F1XV", "2XAAPFU0939F1ZV", "27AAPFU0939F0ZV"} {
		_, err := NormalizeGSTIN(bad)
		assert.Error(t, err, bad)
		assert.True(t, IsKind(err, KindValidation), bad)
	}
}

func TestNormalizeIFSC(t *testing.T) {
	got, err := NormalizeIFSC("hdfc0001234")
	require.NoError(t, err)
	assert.Equal(t, "HDFC0001234", got)

	_, err = NormalizeIFSC("HDFC1001234")
	assert.Error(t, err)
	_, err = NormalizeIFSC("HDFC000123")
	assert.Error(t, err)
}

func TestNormalizeAccountNumber(t *testing.T) {
	got, err := NormalizeAccountNumber(" 123456789012 ")
	require.NoError(t, err)
	assert.Equal(t, "123456789012", got)

	_, err = NormalizeAccountNumber("12345678")
	assert.Error(t, err)
	_, err = NormalizeAccountNumber("12345678A0")
	assert.Error(t, err)
	_, err = NormalizeAccountNumber("123456789012345678901")
	assert.Error(t, err)
}

func TestAppErrorStatusCode(t *testing.T) {
	assert.Equal(t, 400, Validation("bad").StatusCode())
	assert.Equal(t, 404, NotFound("Invoice").StatusCode())
	assert.Equal(t, 409, Conflict("dup").StatusCode())
	assert.Equal(t, 502, Gateway("down", nil).StatusCode())
	assert.Equal(t, 429, Timeout("slow").StatusCode())
	assert.Equal(t, 500, Internal("boom", nil).StatusCode())
	assert.Equal(t, "Invoice not found", NotFound("Invoice").Error())
}
