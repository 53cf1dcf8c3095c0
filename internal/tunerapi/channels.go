package tunerapi

import "sort"

const (
	// MinChannel and MaxChannel bound the US broadcast RF channels the
	// receiver can tune.
	MinChannel = 2
	MaxChannel = 51
)

// channelFrequencies maps physical RF channel to center-of-band frequency
// in Hz as reported by the device. Channel 37 is reserved for radio
// astronomy and never carries broadcasts.
var channelFrequencies = map[int]int{
	2: 57000000, 3: 63000000, 4: 69000000, 5: 79000000, 6: 85000000,
	7: 177000000, 8: 183000000, 9: 189000000, 10: 195000000,
	11: 201000000, 12: 207000000, 13: 213000000,
	14: 473000000, 15: 479000000, 16: 485000000, 17: 491000000,
	18: 497000000, 19: 503000000, 20: 509000000, 21: 515000000,
	22: 521000000, 23: 527000000, 24: 533000000, 25: 539000000,
	26: 545000000, 27: 551000000, 28: 557000000, 29: 563000000,
	30: 569000000, 31: 575000000, 32: 581000000, 33: 587000000,
	34: 593000000, 35: 599000000, 36: 605000000,
	38: 617000000, 39: 623000000, 40: 629000000, 41: 635000000,
	42: 641000000, 43: 647000000, 44: 653000000, 45: 659000000,
	46: 665000000, 47: 671000000, 48: 677000000, 49: 683000000,
	50: 689000000, 51: 695000000,
}

var frequencyChannels = func() map[int]int {
	m := make(map[int]int, len(channelFrequencies))
	for ch, hz := range channelFrequencies {
		m[hz] = ch
	}
	return m
}()

// FrequencyForChannel returns the frequency in Hz of a physical channel
func FrequencyForChannel(channel int) (int, bool) {
	hz, ok := channelFrequencies[channel]
	return hz, ok
}

// ChannelForFrequency returns the physical channel for a frequency in Hz
func ChannelForFrequency(hz int) (int, bool) {
	ch, ok := frequencyChannels[hz]
	return ch, ok
}

// ValidChannel reports whether channel is a tunable physical channel
func ValidChannel(channel int) bool {
	_, ok := channelFrequencies[channel]
	return ok
}

// Channels returns every tunable physical channel in ascending order
func Channels() []int {
	out := make([]int, 0, len(channelFrequencies))
	for ch := range channelFrequencies {
		out = append(out, ch)
	}
	sort.Ints(out)
	return out
}
