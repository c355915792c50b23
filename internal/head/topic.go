package head

import (
	"strings"

	"github.com/juju/errors"
)

// Topic layout under the deployment base topic B:
//
//	device -> backend  B/pb/d/{hostname}/{hb|login|status|alarm|response|lw}
//	backend -> device  B/pb/d/{hostname}/cmd
//
// Legacy topic aliases are deliberately not subscribed: one logical event
// must arrive exactly once.
const (
	topicInfix = "/pb/d/"

	suffixHeartbeat = "hb"
	suffixLogin     = "login"
	suffixStatus    = "status"
	suffixAlarm     = "alarm"
	suffixResponse  = "response"
	suffixLastWill  = "lw"
	suffixCommand   = "cmd"
)

var inboundSuffixes = []string{
	suffixHeartbeat, suffixLogin, suffixStatus, suffixAlarm, suffixResponse, suffixLastWill,
}

func commandTopic(base, hostname string) string {
	return base + topicInfix + hostname + "/" + suffixCommand
}

// DeviceFilters returns the subscription filters covering every inbound
// message class, one filter per class.
func DeviceFilters(base string) []string {
	out := make([]string, 0, len(inboundSuffixes))
	for _, s := range inboundSuffixes {
		out = append(out, base+topicInfix+"+/"+s)
	}
	return out
}

func parseDeviceTopic(base, topic string) (hostname, suffix string, err error) {
	rest, ok := strings.CutPrefix(topic, base+topicInfix)
	if !ok {
		return "", "", errors.NotValidf("topic=%s outside base=%s", topic, base)
	}
	hostname, suffix, ok = strings.Cut(rest, "/")
	if !ok || hostname == "" || suffix == "" || strings.Contains(suffix, "/") {
		return "", "", errors.NotValidf("topic=%s", topic)
	}
	return hostname, suffix, nil
}

func classFromSuffix(suffix string) Class {
	switch suffix {
	case suffixHeartbeat:
		return ClassHeartbeat
	case suffixLogin:
		return ClassLogin
	case suffixStatus:
		return ClassStatus
	case suffixAlarm:
		return ClassAlarm
	case suffixResponse:
		return ClassResponse
	case suffixLastWill:
		return ClassLastWill
	}
	return ClassInvalid
}
