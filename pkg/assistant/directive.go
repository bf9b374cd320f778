package assistant

import (
	"strings"
	"time"

	"github.com/papercomputeco/jarvis/pkg/memory"
)

const (
	timeLayout = "03:04 PM"
	dateLayout = "January 02, 2006"
)

// ResolveDirective turns a LocalKnowledge value into reply text. The time and
// date directives are rendered from now; any other value is returned as is.
func ResolveDirective(value string, now time.Time) string {
	switch strings.TrimSpace(value) {
	case memory.DirectiveTime:
		return "The time is " + now.Format(timeLayout) + "."
	case memory.DirectiveDate:
		return "Today is " + now.Format(dateLayout) + "."
	default:
		return value
	}
}
