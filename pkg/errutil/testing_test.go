// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Frontmark Contributors

package errutil_test

import (
	"testing"

	"github.com/samber/oops"

	"github.com/frontmark/frontmark/pkg/errutil"
)

func TestAssertErrorCode_MatchingCode(t *testing.T) {
	err := oops.Code(errutil.ClassParse).Errorf("test error")
	errutil.AssertErrorCode(t, err, errutil.ClassParse)
	errutil.AssertParseError(t, err)
}

func TestAssertErrorContext_MatchingKeyValue(t *testing.T) {
	err := oops.With("path", "tags[0]").Errorf("test error")
	errutil.AssertErrorContext(t, err, "path", "tags[0]")
}
