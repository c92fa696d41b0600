/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package pathx_test

import (
	"fmt"

	"dirpx.dev/pathx"
)

type Order struct {
	Lines []Line
	Notes map[string]string
}

type Line struct {
	SKU string
	Qty int
}

func Example() {
	e := pathx.New()
	if err := pathx.Register[Order](e, "lines[0].qty", "notes[gift]"); err != nil {
		fmt.Println(err)
		return
	}

	o := &Order{Lines: []Line{{SKU: "A-1", Qty: 1}}, Notes: map[string]string{}}
	_ = pathx.Set(e, o, "Lines[0].Qty", 3)
	_ = pathx.Set(e, o, "notes[gift]", "yes")

	qty, _ := pathx.Get[int](e, o, "lines[0].qty")
	gift, _ := pathx.Get[string](e, o, "notes[gift]")
	fmt.Println(qty, gift)

	_, err := pathx.Get[int](e, o, "lines[4].qty")
	fmt.Println(err)
	// Output:
	// 3 yes
	// pathx: out-of-range in "lines[4].qty" on []pathx_test.Line: index 4 out of range [0,1)
}
