// Package usdt implements the simulated USDT deposit gateway. There is no
// real chain behind it: deposit addresses come from configuration,
// references are minted locally and settlement callbacks are trusted when
// their HMAC signature checks out.
package usdt

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"
)

type USDTDriver struct {
	Address string
	Secret  string
}

func NewUSDTDriver() *USDTDriver {
	return &USDTDriver{}
}

func (d *USDTDriver) SetConfig(config map[string]interface{}) error {
	if val, ok := config["address"].(string); ok && val != "" {
		d.Address = val
	} else {
		return errors.New("missing address in config")
	}

	if val, ok := config["secret"].(string); ok && val != "" {
		d.Secret = val
	} else {
		return errors.New("missing secret in config")
	}
	return nil
}

// DepositAddress returns the platform wallet address. The simulation uses
// one shared address; the userID parameter keeps the interface honest for
// drivers that derive per-user addresses.
func (d *USDTDriver) DepositAddress(userID string) (string, error) {
	if d.Address == "" {
		return "", errors.New("driver not configured")
	}
	return d.Address, nil
}

// IssueReference mints a simulated on-chain transaction hash.
func (d *USDTDriver) IssueReference() string {
	return fmt.Sprintf("dep_%d_%s", time.Now().Unix(), randSuffix(9))
}

// VerifyNotify checks the HMAC signature of a settlement callback.
func (d *USDTDriver) VerifyNotify(params map[string]interface{}) (bool, string, string, error) {
	data := make(map[string]string)
	var remoteSign string
	var userID string
	var reference string

	for k, v := range params {
		valStr := fmt.Sprintf("%v", v)
		if k == "sign" {
			remoteSign = valStr
			continue
		}
		data[k] = valStr
		if k == "user_id" {
			userID = valStr
		}
		if k == "reference" {
			reference = valStr
		}
	}

	localSign := d.generateSign(data)
	if hmac.Equal([]byte(localSign), []byte(remoteSign)) {
		return true, userID, reference, nil
	}
	return false, userID, reference, errors.New("signature mismatch")
}

func (d *USDTDriver) generateSign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		if params[k] == "" {
			continue
		}
		pairs = append(pairs, k+"="+params[k])
	}

	h := hmac.New(sha256.New, []byte(d.Secret))
	h.Write([]byte(strings.Join(pairs, "&")))
	return hex.EncodeToString(h.Sum(nil))
}

const refAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

func randSuffix(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = refAlphabet[rand.Intn(len(refAlphabet))]
	}
	return string(b)
}
