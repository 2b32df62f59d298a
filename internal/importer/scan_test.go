package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScanErrorCodeDuplicateDocument(t *testing.T) {
	dup, codes := ScanErrorCode("Chứng từ DH001/2025 đã nhập.")
	assert.True(t, dup)
	assert.Empty(t, codes)
}

func TestScanErrorCodeMissingCode(t *testing.T) {
	dup, codes := ScanErrorCode("Mã hàng SP001 không tồn tại trong hệ thống")
	assert.False(t, dup)
	assert.Equal(t, []string{"SP001"}, codes)
}

func TestScanErrorCodeMultiWordCode(t *testing.T) {
	dup, codes := ScanErrorCode("Mã hàng AB 123 XYZ không tồn tại trong hệ thống")
	assert.False(t, dup)
	assert.Equal(t, []string{"AB 123 XYZ"}, codes)
}

func TestScanErrorCodeMultipleCodes(t *testing.T) {
	msg := "Mã hàng SP001 không tồn tại trong hệ thống. Mã hàng SP002 không tồn tại trong hệ thống"
	dup, codes := ScanErrorCode(msg)
	assert.False(t, dup)
	assert.Equal(t, []string{"SP001", "SP002"}, codes)
}

func TestScanErrorCodeDuplicateWinsOverCodes(t *testing.T) {
	msg := "Chứng từ DH001 đã nhập. Mã hàng SP001 không tồn tại trong hệ thống"
	dup, codes := ScanErrorCode(msg)
	assert.True(t, dup)
	assert.Empty(t, codes)
}

func TestScanErrorCodeUnrelated(t *testing.T) {
	dup, codes := ScanErrorCode("internal server error")
	assert.False(t, dup)
	assert.Empty(t, codes)

	dup, codes = ScanErrorCode("")
	assert.False(t, dup)
	assert.Empty(t, codes)
}
