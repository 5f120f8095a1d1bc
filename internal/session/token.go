package session

import (
	"encoding/base64"
	"fmt"
	"time"
)

// LocalToken mints the placeholder token issued by the email/password form.
// Nothing verifies it.
func LocalToken(user, pass string, now time.Time) string {
	raw := fmt.Sprintf("local:%s:%s:%d", user, pass, now.UnixMilli())
	return base64.StdEncoding.EncodeToString([]byte(raw))
}

// GoogleToken mints the placeholder token of the simulated Google sign-in.
func GoogleToken(now time.Time) string {
	return fmt.Sprintf("google:%d", now.UnixMilli())
}
