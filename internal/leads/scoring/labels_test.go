package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyBands(t *testing.T) {
	cases := []struct {
		total int
		want  Level
	}{
		{100, LevelVeryHigh},
		{80, LevelVeryHigh},
		{79, LevelHigh},
		{60, LevelHigh},
		{59, LevelMedium},
		{40, LevelMedium},
		{39, LevelLow},
		{20, LevelLow},
		{19, LevelVeryLow},
		{0, LevelVeryLow},
	}
	for _, tc := range cases {
		got := Classify(tc.total)
		assert.Equal(t, tc.want, got.Level, "total %d", tc.total)
		assert.NotEmpty(t, got.Indicator)
		assert.NotEmpty(t, got.Color)
	}
}

func TestIsHot(t *testing.T) {
	assert.True(t, IsHot(80))
	assert.False(t, IsHot(79))
}

func TestComponentsMetadataSumsToMaxTotal(t *testing.T) {
	sum := 0
	keys := make([]string, 0, 5)
	for _, c := range Components() {
		sum += c.Max
		keys = append(keys, c.Key)
	}
	assert.Equal(t, MaxTotal, sum)
	assert.Equal(t, 100, sum)
	assert.Equal(t, []string{"source", "activity", "responseTime", "vehicleValue", "freshness"}, keys)
}

func TestComponentsReturnsCopy(t *testing.T) {
	first := Components()
	first[0].Max = 999
	assert.Equal(t, MaxSource, Components()[0].Max)
}

func TestBreakdownValue(t *testing.T) {
	b := Breakdown{Source: 20, Activity: 15, ResponseTime: 20, VehicleValue: 5, Freshness: 15, Total: 75}
	for _, c := range Components() {
		assert.GreaterOrEqual(t, b.Value(c.Key), 0, c.Key)
	}
	assert.Equal(t, 75, b.Value("total"))
	assert.Equal(t, -1, b.Value("nope"))
}
