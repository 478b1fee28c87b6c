// Package config loads the optional per-project settings file for the
// voxel-archive CLI.
//
// The file lives in the working directory next to the snapshots and may be
// written as YAML (.voxel-archive.yaml, parsed with gopkg.in/yaml.v3) or as
// JSON with comments (.voxel-archive.jsonc, comments stripped with
// github.com/tidwall/jsonc before encoding/json decodes it). When no file
// exists the historical defaults apply: voxel-main archived as voxel-NN.
package config
