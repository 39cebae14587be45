package roast

import "fmt"

// Channel is a control channel of the roaster. Its value is the code the
// device writes into action logs as ctrlType.
type Channel int

const (
	// Power is the burner (heater) output.
	Power Channel = 0
	// Fan is the exhaust fan speed.
	Fan Channel = 1
	// Drum is the drum rotation speed.
	Drum Channel = 2
)

var channelNames = map[Channel]string{
	Power: "power",
	Fan:   "fan",
	Drum:  "drum",
}

// Channels returns every channel in column order.
func Channels() []Channel {
	return []Channel{Power, Fan, Drum}
}

// ParseChannel maps a channel name such as "fan" to its Channel.
func ParseChannel(name string) (Channel, error) {
	for c, n := range channelNames {
		if n == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown control channel %q", name)
}

// Code returns the ctrlType used in action logs.
func (c Channel) Code() int { return int(c) }

func (c Channel) String() string {
	if n, ok := channelNames[c]; ok {
		return n
	}
	return fmt.Sprintf("channel(%d)", int(c))
}
