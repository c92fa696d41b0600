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

package apis

import "dirpx.dev/pathx/schema"

// Strategy fills the member tables of a freshly created schema.Type.
//
// TryDescribe returns handled=true to stop the chain: the type is fully
// described. handled=false lets later strategies add to the same tables.
type Strategy interface {
	TryDescribe(t *schema.Type, cfg Config) (handled bool, err error)
}

// Resolver runs an ordered set of strategies against a type.
type Resolver interface {
	Describe(t *schema.Type, cfg Config) error
}
