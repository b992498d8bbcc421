package idgen

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Prefixes used for public identifiers.
const (
	PrefixLoan         = "loan"
	PrefixMedia        = "med"
	PrefixUser         = "usr"
	PrefixReview       = "rev"
	PrefixNotification = "ntf"
	PrefixToken        = "tok"
)

var (
	entropyMu   sync.Mutex
	entropyOnce sync.Once
	entropy     *ulid.MonotonicEntropy
)

func newEntropy() *ulid.MonotonicEntropy {
	entropyOnce.Do(func() {
		source := rand.NewSource(time.Now().UnixNano())
		entropy = ulid.Monotonic(rand.New(source), 0)
	})
	return entropy
}

// New returns a "<prefix>_<ulid>" identifier in lower case.
func New(prefix string) string {
	entropyMu.Lock()
	id := ulid.MustNew(ulid.Timestamp(time.Now()), newEntropy())
	entropyMu.Unlock()
	return prefix + "_" + strings.ToLower(id.String())
}

// IsValid reports whether value is an identifier minted by New with the given prefix.
func IsValid(prefix, value string) bool {
	rest, ok := strings.CutPrefix(strings.TrimSpace(value), prefix+"_")
	if !ok {
		return false
	}
	_, err := ulid.Parse(strings.ToUpper(rest))
	return err == nil
}
