package client

import (
	"encoding/json"
	"strconv"
	"strings"

	pkgerrors "github.com/pkg/errors"

	"github.com/battalert/battalert/pkg/config"
	"github.com/battalert/battalert/pkg/types"
)

func (c *Client) GetStatus() (*types.Status, error) {
	ret, err := c.Get("/status")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get status")
	}

	var status types.Status
	if err := json.Unmarshal([]byte(ret), &status); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal status")
	}

	return &status, nil
}

func (c *Client) GetPowerLevel() (string, error) {
	ret, err := c.Get("/power-level")
	if err != nil {
		return "", pkgerrors.Wrapf(err, "failed to get power level")
	}
	return strings.Trim(ret, "\"\n"), nil
}

func (c *Client) GetIsWarning() (bool, error) {
	ret, err := c.Get("/is-warning")
	if err != nil {
		return false, pkgerrors.Wrapf(err, "failed to get warning status")
	}
	return parseBoolResponse(ret)
}

func (c *Client) GetConfig() (*config.RawFileConfig, error) {
	ret, err := c.Get("/config")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get config")
	}

	var conf config.RawFileConfig
	if err := json.Unmarshal([]byte(ret), &conf); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal config")
	}

	return &conf, nil
}

func (c *Client) GetVersion() (string, error) {
	ret, err := c.Get("/version")
	if err != nil {
		return "", pkgerrors.Wrapf(err, "failed to get version")
	}
	return strings.Trim(ret, "\"\n"), nil
}

func (c *Client) SetSoundFile(path string) (string, error) {
	payload, err := json.Marshal(path)
	if err != nil {
		return "", err
	}
	return c.Put("/sound-file", string(payload))
}

func (c *Client) SetSilentModeGate(enabled bool) (string, error) {
	return c.Put("/silent-mode-gate", strconv.FormatBool(enabled))
}

func parseBoolResponse(ret string) (bool, error) {
	v, err := strconv.ParseBool(strings.TrimSpace(ret))
	if err != nil {
		return false, pkgerrors.Wrapf(err, "failed to parse boolean response %q", ret)
	}
	return v, nil
}
