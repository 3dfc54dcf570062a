package heatmap

// Band is an accuracy bucket used for coloring keys.
type Band int

const (
	BandNone Band = iota
	BandWeak
	BandFair
	BandGood
	BandStrong
)

func (b Band) String() string {
	switch b {
	case BandNone:
		return "no data"
	case BandWeak:
		return "<50%"
	case BandFair:
		return "50-75%"
	case BandGood:
		return "75-90%"
	case BandStrong:
		return "90-100%"
	default:
		return "unknown"
	}
}

// BandFor buckets an accuracy percentage.
func BandFor(accuracy float64, pressed bool) Band {
	switch {
	case !pressed:
		return BandNone
	case accuracy >= 90:
		return BandStrong
	case accuracy >= 75:
		return BandGood
	case accuracy >= 50:
		return BandFair
	default:
		return BandWeak
	}
}

// KeyboardRows is the QWERTY layout drawn by the keys view.
var KeyboardRows = [][]rune{
	[]rune("`1234567890-="),
	[]rune("qwertyuiop[]"),
	[]rune("asdfghjkl;'"),
	[]rune("zxcvbnm,./"),
	{' '},
}
