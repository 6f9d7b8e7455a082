package observation

import (
	"fmt"
	"math/rand/v2"

	"github.com/pkg/errors"
)

// SyntheticConfig sizes a generated observation
type SyntheticConfig struct {
	ObsID          uint32
	Antennas       int
	CoarseChannels int
	Timesteps      int
	FineChannels   int
	Pols           int
	Seed           uint64
}

const (
	syntheticStartUnixMs   = 1_383_845_344_000
	syntheticIntegrationMs = 2000
	syntheticCoarseWidthHz = 1_280_000
	// receiver channel numbers start here, roughly 140 MHz
	syntheticFirstReceiverChan = 109
)

// SyntheticMetadata builds plausible metadata for a generated observation
func SyntheticMetadata(cfg SyntheticConfig) *Metadata {
	m := &Metadata{
		ObsID:                    cfg.ObsID,
		CorrVersion:              CorrelatorV2,
		NumFineChannelsPerCoarse: cfg.FineChannels,
		NumVisibilityPols:        cfg.Pols,
		CoarseChannelWidthHz:     syntheticCoarseWidthHz,
		IntegrationTimeMs:        syntheticIntegrationMs,
	}
	for i := 0; i < cfg.Antennas; i++ {
		// Tiles are named by receiver and slot, e.g. Tile011 .. Tile018, Tile021 ..
		m.Antennas = append(m.Antennas, Antenna{TileName: fmt.Sprintf("Tile%02d%d", i/8+1, i%8+1)})
	}
	for i := 0; i < cfg.CoarseChannels; i++ {
		rx := syntheticFirstReceiverChan + i
		m.CoarseChannels = append(m.CoarseChannels, CoarseChannel{
			ReceiverChannelNumber: rx,
			ChannelCentreHz:       uint32(rx) * syntheticCoarseWidthHz,
		})
	}
	for i := 0; i < cfg.Timesteps; i++ {
		m.Timesteps = append(m.Timesteps, TimeStep{UnixTimeMs: syntheticStartUnixMs + uint64(i)*syntheticIntegrationMs})
	}
	return m
}

// Synthesize generates an in-memory observation with deterministic pseudo-random samples.
// Autocorrelations get positive real parts and zero imaginary parts on the
// parallel-hand products; everything else is Gaussian noise.
func Synthesize(cfg SyntheticConfig) (*Memory, error) {
	meta := SyntheticMetadata(cfg)
	if err := meta.Validate(); err != nil {
		return nil, errors.Wrap(ErrMetadata, err.Error())
	}

	rng := rand.New(rand.NewPCG(cfg.Seed, uint64(cfg.ObsID)))
	mem := NewMemory(meta)
	n := len(meta.Antennas)

	for ts := range meta.Timesteps {
		for cc := range meta.CoarseChannels {
			buf := make([]float32, 0, meta.FloatsPerSlice())
			for ant1 := 0; ant1 < n; ant1++ {
				for ant2 := ant1; ant2 < n; ant2++ {
					for fc := 0; fc < meta.NumFineChannelsPerCoarse; fc++ {
						for pol := 0; pol < meta.NumVisibilityPols; pol++ {
							re := float32(rng.NormFloat64())
							im := float32(rng.NormFloat64())
							if ant1 == ant2 && isParallelHand(pol, meta.NumVisibilityPols) {
								re = 1000 + float32(rng.Float64()*100)
								im = 0
							}
							buf = append(buf, re, im)
						}
					}
				}
			}
			mem.SetSlice(ts, cc, buf)
		}
	}

	return mem, nil
}

// isParallelHand reports whether pol is XX or YY in the XX,XY,YX,YY ordering
func isParallelHand(pol, numPols int) bool {
	if numPols != 4 {
		return pol == 0
	}
	return pol == 0 || pol == 3
}
