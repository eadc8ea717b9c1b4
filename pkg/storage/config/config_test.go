// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharkcz/anaconda/pkg/storage/config"
)

func TestLoadBytesDefaults(t *testing.T) {
	cfg, err := config.LoadBytes([]byte("sysRoot: /mnt/target\n"))
	require.NoError(t, err)

	assert.Equal(t, "/mnt/target", cfg.SysRoot)
	assert.Equal(t, "/sys", cfg.SysfsRoot)
	assert.Empty(t, cfg.Endpoints.ISCSI)
}

func TestLoadBytesFull(t *testing.T) {
	cfg, err := config.LoadBytes([]byte(`sysRoot: /mnt/sysimage
sysfsRoot: /mnt/sys
endpoints:
  iscsi: localhost:10500
  fcoe: localhost:10501
  zfcp: localhost:10502
`))
	require.NoError(t, err)

	assert.Equal(t, "/mnt/sysimage", cfg.SysRoot)
	assert.Equal(t, "/mnt/sys", cfg.SysfsRoot)
	assert.Equal(t, "localhost:10500", cfg.Endpoints.ISCSI)
	assert.Equal(t, "localhost:10501", cfg.Endpoints.FCOE)
	assert.Equal(t, "localhost:10502", cfg.Endpoints.ZFCP)
}

func TestLoadBytesUnknownField(t *testing.T) {
	_, err := config.LoadBytes([]byte("sysroot: /mnt/target\n"))
	require.Error(t, err)
	assert.ErrorContains(t, err, "failed to decode storage config")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sysRoot: /mnt/target\n"), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/mnt/target", cfg.SysRoot)
}

func TestLoadMissing(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
