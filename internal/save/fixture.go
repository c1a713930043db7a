// Copyright © 2023 Antalpha
//
// This file is part of Antalpha. The full Antalpha copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

// Package save stores key material and presign outputs as delimited text files.
// Every line of a file is a field name and a hex value separated by a tab.
package save

import (
	"bufio"
	"bytes"
	"encoding"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"MPC_PRESIGN/pkg/ecdsa"
	"MPC_PRESIGN/pkg/math/curve"
	"MPC_PRESIGN/pkg/party"
	"MPC_PRESIGN/protocols/config"
	"MPC_PRESIGN/protocols/presign"
	log "github.com/sirupsen/logrus"
)

const (
	configFileFormat  = "config_%s.data"
	presignFileFormat = "presign_%s.data"

	kindConfig  = "config"
	kindPresign = "presign"

	// maxLine bounds a single field, configs carry one aux proof per party.
	maxLine = 16 << 20
)

var ErrExists = errors.New("save: file already exists")

// field is one line of a file.
type field struct {
	Name  string
	Value []byte
}

func writeFields(w io.Writer, fields []field) error {
	bw := bufio.NewWriter(w)
	for _, f := range fields {
		if strings.ContainsAny(f.Name, "\t\n") {
			return fmt.Errorf("save: invalid field name %q", f.Name)
		}
		if _, err := fmt.Fprintf(bw, "%s\t%s\n", f.Name, hex.EncodeToString(f.Value)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func readFields(r io.Reader) (map[string][]byte, error) {
	fields := make(map[string][]byte)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLine)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if text == "" {
			continue
		}
		name, value, ok := strings.Cut(text, "\t")
		if !ok {
			return nil, fmt.Errorf("save: line %d: missing delimiter", line)
		}
		if _, dup := fields[name]; dup {
			return nil, fmt.Errorf("save: line %d: duplicate field %q", line, name)
		}
		data, err := hex.DecodeString(value)
		if err != nil {
			return nil, fmt.Errorf("save: line %d: %w", line, err)
		}
		fields[name] = data
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return fields, nil
}

func marshalField(name string, v encoding.BinaryMarshaler) (field, error) {
	data, err := v.MarshalBinary()
	if err != nil {
		return field{}, fmt.Errorf("save: %s: %w", name, err)
	}
	return field{Name: name, Value: data}, nil
}

func unmarshalField(fields map[string][]byte, name string, v encoding.BinaryUnmarshaler) error {
	data, ok := fields[name]
	if !ok {
		return fmt.Errorf("save: missing field %q", name)
	}
	if err := v.UnmarshalBinary(data); err != nil {
		return fmt.Errorf("save: %s: %w", name, err)
	}
	return nil
}

func checkKind(fields map[string][]byte, kind string) error {
	if got := string(fields["kind"]); got != kind {
		return fmt.Errorf("save: expected a %s file, got %q", kind, got)
	}
	return nil
}

// EncodeConfig writes c to w.
func EncodeConfig(w io.Writer, c *config.Config) error {
	data, err := c.MarshalBinary()
	if err != nil {
		return err
	}
	return writeFields(w, []field{
		{Name: "kind", Value: []byte(kindConfig)},
		{Name: "id", Value: []byte(c.ID)},
		{Name: "config", Value: data},
	})
}

// DecodeConfig reads a config of group written by EncodeConfig.
func DecodeConfig(r io.Reader, group curve.Curve) (*config.Config, error) {
	fields, err := readFields(r)
	if err != nil {
		return nil, err
	}
	if err = checkKind(fields, kindConfig); err != nil {
		return nil, err
	}
	c := config.EmptyConfig(group)
	if err = unmarshalField(fields, "config", c); err != nil {
		return nil, err
	}
	if id := party.ID(fields["id"]); id != c.ID {
		return nil, fmt.Errorf("save: config of %s stored as %s", c.ID, id)
	}
	return c, nil
}

// EncodeResult writes the presign output of one party to w, with its revealed secrets if any.
func EncodeResult(w io.Writer, id party.ID, res *presign.Result) error {
	if res == nil || res.PreSignature == nil || res.PublicKey == nil {
		return errors.New("save: incomplete presign result")
	}
	fields := []field{
		{Name: "kind", Value: []byte(kindPresign)},
		{Name: "id", Value: []byte(id)},
	}
	items := []struct {
		name string
		v    encoding.BinaryMarshaler
	}{
		{"public", res.PublicKey},
		{"presignature", res.PreSignature},
	}
	if rv := res.Reveal; rv != nil {
		items = append(items, []struct {
			name string
			v    encoding.BinaryMarshaler
		}{
			{"reveal.ecdsa", rv.ECDSA},
			{"reveal.k", rv.K},
			{"reveal.gamma", rv.Gamma},
			{"reveal.delta", rv.Delta},
			{"reveal.chi", rv.Chi},
		}...)
	}
	for _, item := range items {
		f, err := marshalField(item.name, item.v)
		if err != nil {
			return err
		}
		fields = append(fields, f)
	}
	return writeFields(w, fields)
}

// DecodeResult reads the output written by EncodeResult.
func DecodeResult(r io.Reader, group curve.Curve) (party.ID, *presign.Result, error) {
	fields, err := readFields(r)
	if err != nil {
		return "", nil, err
	}
	if err = checkKind(fields, kindPresign); err != nil {
		return "", nil, err
	}
	id := party.ID(fields["id"])
	if id == "" {
		return "", nil, errors.New("save: missing party ID")
	}
	res := &presign.Result{
		PreSignature: ecdsa.EmptyPreSignature(group),
		PublicKey:    group.NewPoint(),
	}
	if err = unmarshalField(fields, "public", res.PublicKey); err != nil {
		return "", nil, err
	}
	if err = unmarshalField(fields, "presignature", res.PreSignature); err != nil {
		return "", nil, err
	}
	if _, ok := fields["reveal.k"]; ok {
		rv := &presign.Reveal{
			ECDSA: group.NewScalar(),
			K:     group.NewScalar(),
			Gamma: group.NewScalar(),
			Delta: group.NewScalar(),
			Chi:   group.NewScalar(),
		}
		for name, v := range map[string]encoding.BinaryUnmarshaler{
			"reveal.ecdsa": rv.ECDSA,
			"reveal.k":     rv.K,
			"reveal.gamma": rv.Gamma,
			"reveal.delta": rv.Delta,
			"reveal.chi":   rv.Chi,
		} {
			if err = unmarshalField(fields, name, v); err != nil {
				return "", nil, err
			}
		}
		res.Reveal = rv
	}
	return id, res, nil
}

// SaveConfig writes c to dir/config_<id>.data, replacing an existing file.
func SaveConfig(dir string, c *config.Config) error {
	var buf bytes.Buffer
	if err := EncodeConfig(&buf, c); err != nil {
		return err
	}
	return WriteFixtureFile(filepath.Join(dir, fmt.Sprintf(configFileFormat, c.ID)), buf.Bytes(), true)
}

// LoadConfigs reads every config file in dir.
func LoadConfigs(dir string, group curve.Curve) (map[party.ID]*config.Config, error) {
	names, err := listFiles(dir, configFileFormat)
	if err != nil {
		return nil, err
	}
	configs := make(map[party.ID]*config.Config, len(names))
	for _, name := range names {
		c, err := LoadConfig(name, group)
		if err != nil {
			return nil, err
		}
		configs[c.ID] = c
	}
	if len(configs) == 0 {
		return nil, fmt.Errorf("save: no config in %s", dir)
	}
	return configs, nil
}

// LoadConfig reads the config file at path.
func LoadConfig(path string, group curve.Curve) (*config.Config, error) {
	fd, err := os.Open(path)
	if err != nil {
		log.Errorf("unable to open save file %s for reading", path)
		return nil, err
	}
	defer fd.Close()
	c, err := DecodeConfig(fd, group)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.Debugf("done read save file %s", path)
	return c, nil
}

// SaveResult writes the output of id to dir/presign_<id>.data.
// An existing output is never overwritten, a presignature must be used once.
func SaveResult(dir string, id party.ID, res *presign.Result) error {
	var buf bytes.Buffer
	if err := EncodeResult(&buf, id, res); err != nil {
		return err
	}
	return WriteFixtureFile(filepath.Join(dir, fmt.Sprintf(presignFileFormat, id)), buf.Bytes(), false)
}

// LoadResults reads every presign output in dir.
func LoadResults(dir string, group curve.Curve) (map[party.ID]*presign.Result, error) {
	names, err := listFiles(dir, presignFileFormat)
	if err != nil {
		return nil, err
	}
	results := make(map[party.ID]*presign.Result, len(names))
	for _, name := range names {
		fd, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		id, res, err := DecodeResult(fd, group)
		_ = fd.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if GetIDWithEntryName(filepath.Base(name)) != string(id) {
			return nil, fmt.Errorf("save: %s holds the output of %s", name, id)
		}
		results[id] = res
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("save: no presign output in %s", dir)
	}
	return results, nil
}

// DeleteResult removes the output of id from dir.
func DeleteResult(dir string, id party.ID) error {
	return DeleteFixtureFile(filepath.Join(dir, fmt.Sprintf(presignFileFormat, id)))
}

// WriteFixtureFile saves data to path, creating its directory.
func WriteFixtureFile(path string, data []byte, overwrite bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags |= os.O_EXCL
	}
	fd, err := os.OpenFile(path, flags, 0o600)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			log.Errorf("%s already exists, will not overwrite it", path)
			return fmt.Errorf("%w: %s", ErrExists, path)
		}
		log.Errorf("unable to open save file %s for writing", path)
		return err
	}
	if _, err = fd.Write(data); err != nil {
		_ = fd.Close()
		log.Errorf("unable to write save file %s", path)
		return err
	}
	if err = fd.Close(); err != nil {
		log.Errorf("unable to close save file %s", path)
		return err
	}
	log.Infof("done wrote save file %s", path)
	return nil
}

// DeleteFixtureFile removes path.
func DeleteFixtureFile(path string) error {
	if err := os.Remove(path); err != nil {
		log.Errorf("unable to delete fixture file %s", path)
		return err
	}
	log.Infof("done delete fixture file %s", path)
	return nil
}

// GetIDWithEntryName returns the party ID of a file named prefix_<id>.data.
func GetIDWithEntryName(entryName string) string {
	split := strings.Split(entryName, "_")
	return strings.TrimSuffix(split[len(split)-1], ".data")
}

// listFiles returns the sorted paths in dir matching format.
func listFiles(dir, format string) ([]string, error) {
	names, err := filepath.Glob(filepath.Join(dir, fmt.Sprintf(format, "*")))
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}
