package behavioral

import (
	"regexp"
	"strconv"
)

var timestampPattern = regexp.MustCompile(`(\d+)_(\d+)$`)

// Timestamp is the time span encoded in an event id, in seconds
type Timestamp struct {
	Start    int
	End      int
	Duration int
}

// ParseTimestamp extracts the trailing _<start>_<end> offsets from an event id
// such as "T01_0012_0019". Ids that do not match yield a zero Timestamp and ok=false.
func ParseTimestamp(id string) (ts Timestamp, ok bool) {
	match := timestampPattern.FindStringSubmatch(id)
	if match == nil {
		return Timestamp{}, false
	}

	start, err := strconv.Atoi(match[1])
	if err != nil {
		return Timestamp{}, false
	}
	end, err := strconv.Atoi(match[2])
	if err != nil {
		return Timestamp{}, false
	}

	return Timestamp{Start: start, End: end, Duration: end - start}, true
}
