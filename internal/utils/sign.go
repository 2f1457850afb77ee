package utils

import (
	"crypto/md5"
	"encoding/hex"
	"sort"
	"strings"
)

// GenerateSign builds the md5 parameter signature used on outbound processor
// requests: keys sorted, empty values skipped, secret appended as &key=.
func GenerateSign(params map[string]string, secretKey string) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if k == "sign" || strings.TrimSpace(v) == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, k := range keys {
		sb.WriteString(k)
		sb.WriteString("=")
		sb.WriteString(params[k])
		if i < len(keys)-1 {
			sb.WriteString("&")
		}
	}
	sb.WriteString("&key=")
	sb.WriteString(secretKey)

	hash := md5.Sum([]byte(sb.String()))
	return strings.ToUpper(hex.EncodeToString(hash[:]))
}
