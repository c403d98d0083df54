package relay

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrBadPortRange = errors.New("relay: malformed port range")

// PortRange is an inclusive span of candidate callback ports.
type PortRange struct {
	Low  int
	High int
}

// DefaultPortRange is the compiled-in callback span used when neither the
// environment nor the config file names one.
func DefaultPortRange() PortRange {
	return PortRange{Low: 7710, High: 7749}
}

func (r PortRange) String() string {
	return fmt.Sprintf("%d-%d", r.Low, r.High)
}

func (r PortRange) Validate() error {
	if r.Low <= 0 || r.High > 65535 || r.High < r.Low {
		return fmt.Errorf("%w: %s", ErrBadPortRange, r)
	}
	return nil
}

// ParsePortRange reads the "<low>-<high>" form used by TETHER_RELAY_PORTS
// and the config file.
func ParsePortRange(raw string) (PortRange, error) {
	lowText, highText, ok := strings.Cut(strings.TrimSpace(raw), "-")
	if !ok {
		return PortRange{}, fmt.Errorf("%w: %q", ErrBadPortRange, raw)
	}
	low, err := strconv.Atoi(strings.TrimSpace(lowText))
	if err != nil {
		return PortRange{}, fmt.Errorf("%w: %q", ErrBadPortRange, raw)
	}
	high, err := strconv.Atoi(strings.TrimSpace(highText))
	if err != nil {
		return PortRange{}, fmt.Errorf("%w: %q", ErrBadPortRange, raw)
	}
	pr := PortRange{Low: low, High: high}
	if err := pr.Validate(); err != nil {
		return PortRange{}, err
	}
	return pr, nil
}
