// Package seed loads reference data sets (entities, profiles, users,
// dropdowns, assets and netpoints) described in YAML.
package seed

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Dataset is the top-level structure of a seed file. Rows point at each
// other through refs; an empty entity ref means the root entity.
type Dataset struct {
	Entities  []EntitySeed   `yaml:"entities"`
	Profiles  []ProfileSeed  `yaml:"profiles"`
	Users     []UserSeed     `yaml:"users"`
	Dropdowns []DropdownSeed `yaml:"dropdowns"`
	Assets    []AssetSeed    `yaml:"assets"`
	Netpoints []NetpointSeed `yaml:"netpoints"`
}

// EntitySeed defines an entity. Parent must be declared earlier.
type EntitySeed struct {
	Ref     string `yaml:"ref"`
	Name    string `yaml:"name"`
	Parent  string `yaml:"parent,omitempty"`
	Comment string `yaml:"comment,omitempty"`
}

// ProfileSeed maps right modules to a comma separated list of rights
// ("read,update") or "all".
type ProfileSeed struct {
	Name   string            `yaml:"name"`
	Rights map[string]string `yaml:"rights"`
}

type UserSeed struct {
	Login     string           `yaml:"login"`
	RealName  string           `yaml:"realname,omitempty"`
	FirstName string           `yaml:"firstname,omitempty"`
	Language  string           `yaml:"language,omitempty"`
	Inactive  bool             `yaml:"inactive,omitempty"`
	Entity    string           `yaml:"entity,omitempty"`
	Profiles  []AssignmentSeed `yaml:"profiles"`
}

// AssignmentSeed grants a profile on an entity.
type AssignmentSeed struct {
	Profile   string `yaml:"profile"`
	Entity    string `yaml:"entity,omitempty"`
	Recursive bool   `yaml:"recursive,omitempty"`
}

// DropdownSeed is imported like a user-typed value: tree types may give a
// completename ("Building A > Floor 1") creating every missing level.
type DropdownSeed struct {
	Ref          string                     `yaml:"ref,omitempty"`
	ItemType     string                     `yaml:"itemtype"`
	Name         string                     `yaml:"name,omitempty"`
	CompleteName string                     `yaml:"completename,omitempty"`
	Entity       string                     `yaml:"entity,omitempty"`
	Comment      string                     `yaml:"comment,omitempty"`
	Translations map[string]TranslationSeed `yaml:"translations,omitempty"`
}

// TranslationSeed holds the translated fields of one language.
type TranslationSeed struct {
	Name    string `yaml:"name,omitempty"`
	Comment string `yaml:"comment,omitempty"`
}

// AssetSeed defines a row of a type that cannot be imported, such as a
// computer or a printer. Location is the ref of a Location dropdown.
type AssetSeed struct {
	ItemType      string `yaml:"itemtype"`
	Name          string `yaml:"name"`
	Entity        string `yaml:"entity,omitempty"`
	Recursive     bool   `yaml:"recursive,omitempty"`
	Global        bool   `yaml:"global,omitempty"`
	Location      string `yaml:"location,omitempty"`
	Serial        string `yaml:"serial,omitempty"`
	OtherSerial   string `yaml:"otherserial,omitempty"`
	ProductNumber string `yaml:"product_number,omitempty"`
	Comment       string `yaml:"comment,omitempty"`
}

type NetpointSeed struct {
	Name     string `yaml:"name"`
	Entity   string `yaml:"entity,omitempty"`
	Location string `yaml:"location,omitempty"`
	Comment  string `yaml:"comment,omitempty"`
}

// Parse decodes a seed document. Unknown keys are rejected.
func Parse(data []byte) (*Dataset, error) {
	var ds Dataset
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&ds); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing seed file: %w", err)
	}
	return &ds, nil
}

// LoadFile reads and parses a seed file.
func LoadFile(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}
