package mangaku

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseViews(t *testing.T) {
	cases := []struct {
		raw      string
		expected int
	}{
		{"12,345", 12345},
		{"987", 987},
		{"3.5K", 3500},
		{"1.2k", 1200},
		{"2M", 2000000},
		{"1,2M", 12000000},
		{"", 0},
		{"-", 0},
		{"N/A", 0},
	}
	for _, c := range cases {
		t.Run(c.raw, func(t *testing.T) {
			require.Equal(t, c.expected, ParseViews(c.raw))
		})
	}
}

func TestParseRating(t *testing.T) {
	require.Equal(t, 0.0, parseRating(""))
	require.Equal(t, 0.0, parseRating("-"))
	require.Equal(t, 0.0, parseRating("soon"))
	require.Equal(t, 8.4, parseRating(" 8.4 "))
}

func TestYearFrom(t *testing.T) {
	require.Equal(t, 2021, yearFrom("Posted On March 3, 2021", "", 1999))
	require.Equal(t, 2023, yearFrom("no date here", "Updated On July 14, 2023", 1999))
	require.Equal(t, 1999, yearFrom("", "", 1999))
}

func TestTruncateDescription(t *testing.T) {
	require.Equal(t, "short", truncateDescription("short", 100))

	long := ""
	for i := 0; i < 30; i++ {
		long += "abcd "
	}
	out := truncateDescription(long, 100)
	require.Equal(t, 103, len([]rune(out)))
	require.Equal(t, "...", out[len(out)-3:])

	// cuts must land on rune boundaries, not bytes
	multibyte := "ラーメン大好き小泉さん"
	out = truncateDescription(multibyte, 4)
	require.Equal(t, "ラーメン...", out)
}

func TestParseInfoBlock(t *testing.T) {
	block := "Status Ongoing Type Manhwa Author Sung Sang-Young Posted By admin " +
		"Posted On March 3, 2021 Updated On July 14, 2023 Views 1.2M"

	info := parseInfoBlock(block)
	require.Equal(t, "Ongoing", info["status"])
	require.Equal(t, "Manhwa", info["type"])
	require.Equal(t, "Sung Sang-Young", info["author"])
	require.Equal(t, "admin", info["posted_by"])
	require.Equal(t, "March 3, 2021", info["posted_on"])
	require.Equal(t, "July 14, 2023", info["updated_on"])
	require.Equal(t, "1.2M", info["views"])
}

func TestParseInfoBlockPartial(t *testing.T) {
	info := parseInfoBlock("Status Completed Views 987")
	require.Equal(t, "Completed", info["status"])
	require.Equal(t, "987", info["views"])
	_, ok := info["author"]
	require.False(t, ok)
}

func TestInfoBlockMemo(t *testing.T) {
	memo, err := newInfoBlockMemo(0)
	require.NoError(t, err)

	block := "Status Ongoing Views 42"
	first := memo.Parse(block)
	require.EqualValues(t, 0, memo.Hits())

	second := memo.Parse(block)
	require.EqualValues(t, 1, memo.Hits())
	require.Equal(t, first, second)
}

func TestInfoBlockMemoBounded(t *testing.T) {
	memo, err := newInfoBlockMemo(2)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		memo.Parse(fmt.Sprintf("Status Ongoing Views %d", i))
	}
	require.Equal(t, CacheInfo{Len: 2, Capacity: 2}, memo.Info())
}
