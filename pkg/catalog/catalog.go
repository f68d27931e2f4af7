package catalog

import (
	"github.com/samber/lo"

	"github.com/prowheel/wheellab/pkg/model"
)

// Catalog is a snapshot of all parts known to the workshop.
type Catalog struct {
	Rims    []model.RimSpec    `yaml:"rims"`
	Hubs    []model.HubSpec    `yaml:"hubs"`
	Spokes  []model.SpokeSpec  `yaml:"spokes"`
	Nipples []model.NippleSpec `yaml:"nipples"`
}

func (c *Catalog) Rim(ref string) (model.RimSpec, bool) {
	return Resolve(c.Rims, ref)
}

func (c *Catalog) Hub(ref string) (model.HubSpec, bool) {
	return Resolve(c.Hubs, ref)
}

func (c *Catalog) Spoke(ref string) (model.SpokeSpec, bool) {
	return Resolve(c.Spokes, ref)
}

func (c *Catalog) Nipple(ref string) (model.NippleSpec, bool) {
	return Resolve(c.Nipples, ref)
}

// Labels returns the display labels of all entries of a kind.
func (c *Catalog) Labels(kind model.PartKind) []string {
	switch kind {
	case model.PartRim:
		return labels(c.Rims)
	case model.PartHub:
		return labels(c.Hubs)
	case model.PartSpoke:
		return labels(c.Spokes)
	case model.PartNipple:
		return labels(c.Nipples)
	}
	return nil
}

func (c *Catalog) Size() int {
	return len(c.Rims) + len(c.Hubs) + len(c.Spokes) + len(c.Nipples)
}

func labels[T model.Labeled](items []T) []string {
	return lo.Map(items, func(item T, _ int) string { return item.Label() })
}
