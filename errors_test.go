// Copyright 2025 Kirill Scherba <kirill@scherba.ru>. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package webtransport

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCoreErrorWrapsAndUnwraps(t *testing.T) {
	cause := errors.New("boom")
	err := NewCoreError(KindMalformed, cause)
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)

	var ce *CoreError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, KindMalformed, ce.Kind)
}

func TestNewCoreErrorNilPassthrough(t *testing.T) {
	assert.NoError(t, NewCoreError(KindMalformed, nil))
}

func TestAsCoreErrorFindsWrappedKind(t *testing.T) {
	inner := NewCoreError(KindTransportError, errors.New("dropped"))
	outer := fmt.Errorf("dial: %w", inner)

	ce, ok := asCoreError(outer)
	require.True(t, ok)
	assert.Equal(t, KindTransportError, ce.Kind)
}

func TestAsCoreErrorMissWhenNoneWrapped(t *testing.T) {
	_, ok := asCoreError(errors.New("plain"))
	assert.False(t, ok)
}
