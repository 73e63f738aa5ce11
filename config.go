package numarena

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Layout describes one resource a Scope builds.
//
//	capacity: 4096   # elements per region
//	static: true     # StaticArena instead of Arena
//	fixed: true      # Arena that does not grow
//	pooled: true     # a Pool of such regions
//	slots: 8         # pool size, default runtime.NumCPU()
type Layout struct {
	Capacity int  `yaml:"capacity"`
	Static   bool `yaml:"static,omitempty"`
	Fixed    bool `yaml:"fixed,omitempty"`
	Pooled   bool `yaml:"pooled,omitempty"`
	Slots    int  `yaml:"slots,omitempty"`

	// PoolOptions are applied after the slot count when Pooled is set.
	PoolOptions []PoolOption `yaml:"-"`
}

// Validate reports malformed parameters as ErrConfig.
func (l Layout) Validate() error {
	switch {
	case l.Capacity < 0:
		return errors.Wrapf(ErrConfig, "negative capacity %d", l.Capacity)
	case l.Static && l.Fixed:
		return errors.Wrap(ErrConfig, "static and fixed are exclusive; a static layout never grows")
	case l.Slots < 0:
		return errors.Wrapf(ErrConfig, "negative slot count %d", l.Slots)
	case l.Slots > 0 && !l.Pooled:
		return errors.Wrapf(ErrConfig, "slot count %d given for a layout that is not pooled", l.Slots)
	}
	return nil
}

// ParseLayouts decodes a YAML document mapping names to layouts under a
// top-level "layouts" key. Unknown fields and invalid layouts are rejected.
func ParseLayouts(data []byte) (map[string]Layout, error) {
	return decodeLayouts(bytes.NewReader(data))
}

// LoadLayouts reads layouts from a YAML file.
func LoadLayouts(path string) (map[string]Layout, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "numarena: open layouts")
	}
	defer f.Close()
	return decodeLayouts(f)
}

func decodeLayouts(r io.Reader) (map[string]Layout, error) {
	var doc struct {
		Layouts map[string]Layout `yaml:"layouts"`
	}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrapf(ErrConfig, "decode layouts: %v", err)
	}
	for name, l := range doc.Layouts {
		if err := l.Validate(); err != nil {
			return nil, errors.Wrapf(err, "layout %q", name)
		}
	}
	if doc.Layouts == nil {
		doc.Layouts = map[string]Layout{}
	}
	return doc.Layouts, nil
}
