/*
Copyright © 2025 the BEM authors.
This file is part of BEM.

BEM is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

BEM is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with BEM.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package hash creates cache keys for solver and sweep requests.
package hash

import (
	"encoding/gob"
	"fmt"
	"hash"
	"hash/fnv"
	"io"

	"github.com/davecgh/go-spew/spew"
)

// printer is used for objects that gob cannot encode, such as those
// holding NaN values in maps or unexported fields only.
var printer = spew.ConfigState{
	Indent:                  " ",
	SortKeys:                true,
	DisableMethods:          true,
	SpewKeys:                true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
}

// Key returns a hash key for a combination of objects. String methods
// are not used, so values that print the same but differ in content get
// different keys.
func Key(objects ...interface{}) string {
	h := fnv.New128a()
	for _, o := range objects {
		write(h, o)
	}
	return sum(h)
}

func write(h io.Writer, object interface{}) {
	if err := gob.NewEncoder(h).Encode(object); err != nil {
		printer.Fprintf(h, "%#v", object)
	}
}

func sum(h hash.Hash) string {
	b := h.Sum([]byte{})
	return fmt.Sprintf("%x", b[0:h.Size()])
}
