package lighting

import (
	"cmp"
	"slices"

	"github.com/gogpu/light2d/gpucore"
	"github.com/gogpu/light2d/light"
)

// SortingLayer is a host sorting layer. Layers draw in ascending Value;
// layers with equal Value keep their registration order.
type SortingLayer struct {
	ID    int32
	Name  string
	Value int32
}

// SortLayers returns a copy of layers in draw order.
func SortLayers(layers []SortingLayer) []SortingLayer {
	out := slices.Clone(layers)
	slices.SortStableFunc(out, func(a, b SortingLayer) int { return cmp.Compare(a.Value, b.Value) })
	return out
}

// LayerBatch is a run of adjacent sorting layers lit by the same lights.
type LayerBatch struct {
	// StartIndex and EndIndex are inclusive positions in the sorted layers.
	StartIndex int
	EndIndex   int

	LayerIDs []int32
	Range    gpucore.LayerRange
	Stats    light.LayerStats
}

// StartLayer returns the ID of the first layer in the batch.
func (b *LayerBatch) StartLayer() int32 { return b.LayerIDs[0] }

// EndLayer returns the ID of the last layer in the batch.
func (b *LayerBatch) EndLayer() int32 { return b.LayerIDs[len(b.LayerIDs)-1] }

// ComputeBatches groups sorted layers into batches. Starting from the
// lowest layer, each batch extends while the next layer is lit by exactly
// the same visible lights; a change in that set starts a new batch even if
// an earlier batch had the same set.
func ComputeBatches(layers []SortingLayer, cull *light.CullResult) []LayerBatch {
	if len(layers) == 0 {
		return nil
	}
	visible := cull.VisibleLights()
	signature := func(id int32) []*light.Light {
		var lit []*light.Light
		for _, l := range visible {
			if l.IsLitLayer(id) {
				lit = append(lit, l)
			}
		}
		return lit
	}

	var batches []LayerBatch
	for start := 0; start < len(layers); {
		sig := signature(layers[start].ID)
		end := start
		for end+1 < len(layers) && slices.Equal(sig, signature(layers[end+1].ID)) {
			end++
		}
		b := LayerBatch{
			StartIndex: start,
			EndIndex:   end,
			Range:      gpucore.LayerRange{Lower: layers[start].Value, Upper: layers[end].Value},
			Stats:      cull.LightStatsByLayer(layers[start].ID),
		}
		for _, l := range layers[start : end+1] {
			b.LayerIDs = append(b.LayerIDs, l.ID)
		}
		batches = append(batches, b)
		start = end + 1
	}
	return batches
}

// TopMostLitLayer returns the last layer in draw order that l lights.
func TopMostLitLayer(l *light.Light, layers []SortingLayer) (int32, bool) {
	for i := len(layers) - 1; i >= 0; i-- {
		if l.IsLitLayer(layers[i].ID) {
			return layers[i].ID, true
		}
	}
	return 0, false
}
