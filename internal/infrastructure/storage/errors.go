package storage

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAsset = errors.New("invalid asset")
	ErrAssetWrite   = errors.New("asset write failed")
	ErrInvalidName  = errors.New("invalid object name")
)

// AssetError reports a failed asset operation. Kind is ErrInvalidAsset when
// the input is at fault and ErrAssetWrite when the destination is.
type AssetError struct {
	Op   string
	Kind error
	Err  error
}

func (e *AssetError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Kind)
}

func (e *AssetError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}
