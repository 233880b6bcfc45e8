/*-
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package checker

import (
	"fmt"
	"sort"
)

var (
	errNoChecker        = fmt.Errorf("no checker registered")
	errIncompletePlugin = fmt.Errorf("incomplete plugin")
)

// Registry defines how to store and retrieve check plugins by check type.
type Registry interface {
	Register(checkType string, plugin Plugin)
	Get(checkType string) (Plugin, error)
	Types() []string
	Validate() error
}

// checkerRegistry is a simple in-memory implementation of Registry.
type checkerRegistry struct {
	plugins map[string]Plugin
}

func NewRegistry() Registry {
	return &checkerRegistry{
		plugins: make(map[string]Plugin),
	}
}

func (r *checkerRegistry) Register(checkType string, plugin Plugin) {
	r.plugins[checkType] = plugin
}

func (r *checkerRegistry) Get(checkType string) (Plugin, error) {
	p, ok := r.plugins[checkType]
	if !ok {
		return Plugin{}, fmt.Errorf("%w: %s", errNoChecker, checkType)
	}

	return p, nil
}

func (r *checkerRegistry) Types() []string {
	types := make([]string, 0, len(r.plugins))
	for t := range r.plugins {
		types = append(types, t)
	}

	sort.Strings(types)

	return types
}

// Validate confirms every registered plugin implements all three stages.
func (r *checkerRegistry) Validate() error {
	for t, p := range r.plugins {
		if p.Parse == nil || p.Discover == nil || p.Check == nil {
			return fmt.Errorf("%w: %s", errIncompletePlugin, t)
		}
	}

	return nil
}
