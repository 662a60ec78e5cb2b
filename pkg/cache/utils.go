package cache

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// Key joins a prefix and parameters with ':'.
func Key(prefix string, params ...interface{}) string {
	var b strings.Builder
	b.WriteString(prefix)
	for _, p := range params {
		fmt.Fprintf(&b, ":%v", p)
	}
	return b.String()
}

func lockToken() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "locked"
	}
	return hex.EncodeToString(buf)
}
