package storage

import (
	"errors"
	"os"
	"sync"

	"gopkg.in/yaml.v2"
)

// Disk is a flat key-value document persisted as YAML.
// A missing file is not an error; it behaves like an empty document
// so every key falls back to its default.
type Disk struct {
	data     map[string]interface{}
	filename string
	mutex    sync.RWMutex
}

func NewDisk(filename string) (*Disk, error) {
	d := &Disk{
		data:     make(map[string]interface{}),
		filename: filename,
	}

	err := d.load()
	if err != nil {
		return nil, err
	}

	return d, nil
}

func (d *Disk) load() error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	file, err := os.ReadFile(d.filename)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	err = yaml.Unmarshal(file, &d.data)
	if err != nil {
		return err
	}

	// nil values written by older versions read back as "" so
	// callers never have to distinguish absent from empty
	for k, v := range d.data {
		if v == nil {
			d.data[k] = ""
		}
	}

	return nil
}

func (d *Disk) Get(key string) (interface{}, bool) {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	value, ok := d.data[key]
	return value, ok
}

func (d *Disk) Set(key string, value interface{}) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if value == nil {
		value = ""
	}
	d.data[key] = value
	return d.flush()
}

// Update stores multiple keys with a single write to disk.
func (d *Disk) Update(values map[string]interface{}) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	for k, v := range values {
		if v == nil {
			v = ""
		}
		d.data[k] = v
	}
	return d.flush()
}

// GetString returns the value under key, or def when the key is
// missing or holds a non-string.
func (d *Disk) GetString(key, def string) string {
	v, ok := d.Get(key)
	if !ok {
		return def
	}
	s, ok := v.(string)
	if !ok {
		return def
	}
	return s
}

func (d *Disk) GetInt(key string, def int) int {
	v, ok := d.Get(key)
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return def
	}
}

func (d *Disk) GetFloat(key string, def float64) float64 {
	v, ok := d.Get(key)
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return def
	}
}

func (d *Disk) GetBool(key string, def bool) bool {
	v, ok := d.Get(key)
	if !ok {
		return def
	}
	b, ok := v.(bool)
	if !ok {
		return def
	}
	return b
}

func (d *Disk) flush() error {
	yamlData, err := yaml.Marshal(&d.data)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(d.filename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(yamlData)
	return err
}
