package riskengine

import "errors"

var ErrInvalidThresholds = errors.New("thresholds must be strictly descending: intolerable > substantial > important > possible")

// Thresholds are the four Fine-Kinney classification boundaries for a
// location. A score exactly equal to a boundary falls into the lower tier,
// so the boundaries are exclusive lower bounds. A calculation always uses
// one consistent snapshot; mutation happens at the storage layer only.
type Thresholds struct {
	Intolerable float64 `bson:"intolerable" json:"intolerable" yaml:"intolerable"`
	Substantial float64 `bson:"substantial" json:"substantial" yaml:"substantial"`
	Important   float64 `bson:"important" json:"important" yaml:"important"`
	Possible    float64 `bson:"possible" json:"possible" yaml:"possible"`
}

// DefaultThresholds is the shared default set applied to every location
// without a custom override.
func DefaultThresholds() Thresholds {
	return Thresholds{Intolerable: 400, Substantial: 200, Important: 70, Possible: 20}
}

func (t Thresholds) Validate() error {
	if t.Intolerable > t.Substantial && t.Substantial > t.Important && t.Important > t.Possible {
		return nil
	}
	return ErrInvalidThresholds
}
