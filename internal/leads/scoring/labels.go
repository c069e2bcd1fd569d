package scoring

// Level is the display band a total falls into.
type Level string

const (
	LevelVeryHigh Level = "very_high"
	LevelHigh     Level = "high"
	LevelMedium   Level = "medium"
	LevelLow      Level = "low"
	LevelVeryLow  Level = "very_low"
)

// Label describes how a score is rendered in lists and badges.
type Label struct {
	Level     Level  `json:"level"`
	Text      string `json:"label"`
	Color     string `json:"color"`
	Indicator string `json:"indicator"`
}

var bands = []struct {
	min   int
	label Label
}{
	{80, Label{Level: LevelVeryHigh, Text: "Very high", Color: "bg-green-500 text-white", Indicator: "🔥"}},
	{60, Label{Level: LevelHigh, Text: "High", Color: "bg-green-100 text-green-800", Indicator: "⬆️"}},
	{40, Label{Level: LevelMedium, Text: "Medium", Color: "bg-yellow-100 text-yellow-800", Indicator: "➡️"}},
	{20, Label{Level: LevelLow, Text: "Low", Color: "bg-orange-100 text-orange-800", Indicator: "⬇️"}},
}

var veryLow = Label{Level: LevelVeryLow, Text: "Very low", Color: "bg-red-100 text-red-800", Indicator: "❄️"}

// Classify maps a total onto its display band.
func Classify(total int) Label {
	for _, band := range bands {
		if total >= band.min {
			return band.label
		}
	}
	return veryLow
}

// IsHot reports whether total falls into the very high band.
func IsHot(total int) bool {
	return total >= HotThreshold
}

// Component is static display metadata for one breakdown field.
type Component struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Max   int    `json:"max"`
}

var components = []Component{
	{Key: "source", Label: "Source", Max: MaxSource},
	{Key: "activity", Label: "Activity", Max: MaxActivity},
	{Key: "responseTime", Label: "Response time", Max: MaxResponseTime},
	{Key: "vehicleValue", Label: "Vehicle value", Max: MaxVehicleValue},
	{Key: "freshness", Label: "Freshness", Max: MaxFreshness},
}

// Components returns the breakdown metadata in display order.
func Components() []Component {
	out := make([]Component, len(components))
	copy(out, components)
	return out
}

// Value returns the breakdown field named by a Component key, or -1 if unknown.
func (b Breakdown) Value(key string) int {
	switch key {
	case "source":
		return b.Source
	case "activity":
		return b.Activity
	case "responseTime":
		return b.ResponseTime
	case "vehicleValue":
		return b.VehicleValue
	case "freshness":
		return b.Freshness
	case "total":
		return b.Total
	}
	return -1
}
