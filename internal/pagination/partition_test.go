package pagination

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const a4Height = 1123

func blocksOf(heights ...float64) []Block {
	out := make([]Block, len(heights))
	for i, h := range heights {
		out[i] = Block{Markup: fmt.Sprintf("<div>b%d</div>", i+1), Height: h}
	}
	return out
}

// layout reduces pages to block indexes (1-based) for readable assertions.
func layout(t *testing.T, blocks []Block, pages []Page) [][]int {
	t.Helper()
	index := map[string]int{}
	for i, b := range blocks {
		index[b.Markup] = i + 1
	}
	out := make([][]int, len(pages))
	for i, p := range pages {
		for _, b := range p.Blocks {
			out[i] = append(out[i], index[b.Markup])
		}
	}
	return out
}

func TestPartition_Scenarios(t *testing.T) {
	tests := []struct {
		name    string
		heights []float64
		want    [][]int
	}{
		{"two fit then overflow", []float64{400, 400, 400}, [][]int{{1, 2}, {3}}},
		{"single oversized", []float64{1200}, [][]int{{1}}},
		{"oversized between", []float64{800, 1200, 300}, [][]int{{1}, {2}, {3}}},
		{"exact fit", []float64{1000, 123, 1}, [][]int{{1, 2}, {3}}},
		{"zero heights", []float64{0, 0, 1123, 0}, [][]int{{1, 2, 3, 4}}},
		{"oversized first then small", []float64{2000, 10}, [][]int{{1}, {2}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocks := blocksOf(tt.heights...)
			assert.Equal(t, tt.want, layout(t, blocks, Partition(blocks, a4Height)))
		})
	}
}

func TestPartition_NoBlocksNoPages(t *testing.T) {
	assert.Empty(t, Partition(nil, a4Height))
	assert.Empty(t, Partition([]Block{}, a4Height))
}

func TestPartition_InvalidPageHeightPanics(t *testing.T) {
	assert.Panics(t, func() { Partition(blocksOf(10), -1) })
}

func TestPartition_ZeroPageHeightPutsEachBlockAlone(t *testing.T) {
	blocks := blocksOf(1, 2, 3)
	assert.Equal(t, [][]int{{1}, {2}, {3}}, layout(t, blocks, Partition(blocks, 0)))
}

func randomHeights(r *rand.Rand, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		switch r.Intn(10) {
		case 0:
			out[i] = 0
		case 1:
			out[i] = a4Height + float64(r.Intn(800))
		default:
			out[i] = float64(r.Intn(600))
		}
	}
	return out
}

func TestPartition_Properties(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for iter := 0; iter < 200; iter++ {
		blocks := blocksOf(randomHeights(r, r.Intn(40))...)
		pages := Partition(blocks, a4Height)

		// determinism
		require.Equal(t, pages, Partition(blocks, a4Height))

		// coverage: concatenation equals the input
		var flat []Block
		for _, p := range pages {
			require.NotEmpty(t, p.Blocks, "no empty pages")
			flat = append(flat, p.Blocks...)
		}
		if len(blocks) == 0 {
			require.Empty(t, pages)
			continue
		}
		require.Equal(t, blocks, flat)

		for i, p := range pages {
			// capacity, except a lone oversized block
			if len(p.Blocks) > 1 {
				require.LessOrEqual(t, p.Height(), float64(a4Height), "page %d", i)
			}
			// greedy: the first block of the next page did not fit here
			if i+1 < len(pages) {
				require.Greater(t, p.Height()+pages[i+1].Blocks[0].Height, float64(a4Height))
			}
		}
	}
}

func TestPartition_DoesNotAliasInput(t *testing.T) {
	blocks := blocksOf(100, 100)
	pages := Partition(blocks, a4Height)
	blocks[0].Height = 999
	assert.Equal(t, float64(100), pages[0].Blocks[0].Height)
}
