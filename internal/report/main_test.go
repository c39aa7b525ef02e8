// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package report

import (
	"testing"

	"go.uber.org/goleak"
)

// Rendering goroutines must all be gone once Run returns.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
