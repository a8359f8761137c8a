// Package factory instantiates pluggable modules, such as metrics recorders,
// from configuration. A module is described by a type string and a map of raw
// settings; the registered factory decodes the settings into its own struct.
//
//	reg := factory.NewRegistry[metrics.Recorder]()
//	reg.Register("influx", func(conf map[string]any) (metrics.Recorder, error) {
//	    var c struct{ URL string `json:"url"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return newInflux(c.URL), nil
//	})
//	r, err := reg.Create(factory.ModuleConfig{Type: "influx", Conf: map[string]any{"url": "http://db:8086"}})
package factory
