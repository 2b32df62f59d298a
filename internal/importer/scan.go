package importer

import "regexp"

// CRM error-code text patterns. A "document already entered" answer means the
// order is in fact imported; "product code does not exist" names codes missing
// from the CRM catalog (codes can contain spaces, hence the lazy group).
var (
	duplicateDocRe = regexp.MustCompile(`Chứng từ\s+.+?\s+đã nhập\.`)
	missingCodeRe  = regexp.MustCompile(`Mã hàng\s+(\S+(?:\s+\S+)*?)\s+không tồn tại trong hệ thống`)
)

// ScanErrorCode classifies a CRM error message: whether it is a duplicate-
// document answer, plus any non-existing product codes it names.
func ScanErrorCode(errorCode string) (duplicate bool, codes []string) {
	if errorCode == "" {
		return false, nil
	}
	if duplicateDocRe.MatchString(errorCode) {
		return true, nil
	}
	for _, m := range missingCodeRe.FindAllStringSubmatch(errorCode, -1) {
		codes = append(codes, m[1])
	}
	return false, codes
}
