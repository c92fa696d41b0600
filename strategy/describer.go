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

package strategy

import (
	"reflect"

	"dirpx.dev/pathx/apis"
	"dirpx.dev/pathx/schema"
)

var describerType = reflect.TypeFor[schema.Describer]()

// NewDescriberStrategy creates an apis.Strategy that uses schema.Describer.
func NewDescriberStrategy() apis.Strategy {
	return &describerStrategy{}
}

// describerStrategy is a fast path: if *T implements schema.Describer, its
// DescribeMembers declares the whole table and stops the chain.
type describerStrategy struct{}

// Ensure describerStrategy implements apis.Strategy.
var _ apis.Strategy = (*describerStrategy)(nil)

// TryDescribe calls DescribeMembers on a zero *T.
func (*describerStrategy) TryDescribe(t *schema.Type, _ apis.Config) (bool, error) {
	rt := t.GoType()
	if rt.Kind() == reflect.Interface || !reflect.PointerTo(rt).Implements(describerType) {
		return false, nil
	}
	d := schema.NewDeclaration(t)
	reflect.New(rt).Interface().(schema.Describer).DescribeMembers(d)
	return true, d.Err()
}
