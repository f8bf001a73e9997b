package voice_mod

import (
	"context"

	log "github.com/Beijukabruno/audio-anonymization-platform/logger"
)

// Transform names accepted in a parameter record. An absent name means the
// transform is skipped; this is how "disabled" is expressed, distinct from
// an invalid coefficient, which is an error.
const (
	NameVTLN     = `vtln`
	NameResample = `resamp`
	NameMcAdams  = `mcadams`
	NameModSpec  = `modspec`
	NameClip     = `clip`
	NameChorus   = `chorus`
)

// defaultOrder is the pipeline sequence used when the caller does not
// declare one.
var defaultOrder = []string{NameVTLN, NameResample, NameMcAdams, NameModSpec, NameClip, NameChorus}

// Params is the disguise parameter record: one optional coefficient per
// transform. Nil means skip.
type Params struct {
	VTLN     *float64 `yaml:"vtln,omitempty" json:"vtln,omitempty"`
	Resample *float64 `yaml:"resamp,omitempty" json:"resamp,omitempty"`
	McAdams  *float64 `yaml:"mcadams,omitempty" json:"mcadams,omitempty"`
	ModSpec  *float64 `yaml:"modspec,omitempty" json:"modspec,omitempty"`
	Clip     *float64 `yaml:"clip,omitempty" json:"clip,omitempty"`
	Chorus   *float64 `yaml:"chorus,omitempty" json:"chorus,omitempty"`
}

// ParamsFromMap builds a record from a name/coefficient mapping, the shape
// disguise parameter files use. Unrecognized names are ignored, not errors.
func ParamsFromMap(values map[string]float64) Params {
	var params Params
	for name, value := range values {
		coef := value
		switch name {
		case NameVTLN:
			params.VTLN = &coef
		case NameResample:
			params.Resample = &coef
		case NameMcAdams:
			params.McAdams = &coef
		case NameModSpec:
			params.ModSpec = &coef
		case NameClip:
			params.Clip = &coef
		case NameChorus:
			params.Chorus = &coef
		}
	}
	return params
}

// IsEmpty reports whether no transform is configured.
func (p Params) IsEmpty() bool {
	return p.VTLN == nil && p.Resample == nil && p.McAdams == nil &&
		p.ModSpec == nil && p.Clip == nil && p.Chorus == nil
}

// Chain applies configured transforms in sequence over a mono waveform.
type Chain struct {
	Params  Params
	Backend TimeScaleBackend // time-scale backend, explicit per call site
	Order   []string         // optional transform order; default pipeline order when empty
	McAdams McAdamsOptions   // analysis geometry overrides
}

// Apply runs the chain on x at sample rate fs. Transforms without a
// configured coefficient are skipped; unknown names in Order are skipped
// as well.
func (c Chain) Apply(ctx context.Context, x []float64, fs int) ([]float64, *log.Status) {
	order := c.Order
	if len(order) == 0 {
		order = defaultOrder
	}
	y := make([]float64, len(x))
	copy(y, x)
	var status *log.Status
	for _, name := range order {
		switch name {
		case NameVTLN:
			if c.Params.VTLN != nil {
				y, status = VTLN(ctx, y, *c.Params.VTLN)
			}
		case NameResample:
			if c.Params.Resample != nil {
				y, status = TimeScale(ctx, y, *c.Params.Resample, fs, c.Backend)
			}
		case NameMcAdams:
			if c.Params.McAdams != nil {
				y, status = McAdams(ctx, y, *c.Params.McAdams, fs, c.McAdams)
			}
		case NameModSpec:
			if c.Params.ModSpec != nil {
				y, status = ModSpecSmooth(ctx, y, *c.Params.ModSpec)
			}
		case NameClip:
			if c.Params.Clip != nil {
				y, status = Clip(ctx, y, *c.Params.Clip)
			}
		case NameChorus:
			if c.Params.Chorus != nil {
				y, status = Chorus(ctx, y, *c.Params.Chorus)
			}
		}
		if status != nil {
			return nil, status
		}
	}
	return y, nil
}
