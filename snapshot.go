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

package dos

// LevelState holds the field values one class level contributes to an
// instance, keyed by scope visibility and field name.
type LevelState struct {
	Class  string                    `msgpack:"class"`
	Fields map[string]map[string]any `msgpack:"fields"`
}

// Snapshot captures the non-transient field values of o, base levels first.
// Values are shared, not copied.
func (o *Object) Snapshot() ([]LevelState, error) {
	if err := o.usable(); err != nil {
		return nil, err
	}
	if o.disposed {
		return nil, instErr(o.class.name, "snapshot of a disposed instance")
	}
	var out []LevelState
	o.leaf.walk(func(l *level) {
		st := LevelState{Class: l.class.name, Fields: make(map[string]map[string]any)}
		for _, fs := range l.fields {
			v, ok := fs.snapshotValue()
			if !ok {
				continue
			}
			vis := fs.scope.vis.String()
			if st.Fields[vis] == nil {
				st.Fields[vis] = make(map[string]any)
			}
			st.Fields[vis][fs.name] = v
		}
		out = append(out, st)
	})
	return out, nil
}

// Restore builds an instance of c from a snapshot without running its
// constructors. Fields missing from the snapshot keep their declared value.
func (c *Class) Restore(states []LevelState) (*Object, error) {
	if err := c.checkInstantiable(); err != nil {
		return nil, err
	}
	if !c.constructible {
		return nil, instErr(c.name, "restore before static initialization")
	}
	o, err := c.allocator.Alloc(c, c.fresh)
	if err != nil {
		return nil, err
	}
	if err := o.restore(states); err != nil {
		o.abandon()
		return nil, err
	}
	return o, nil
}

func (o *Object) restore(states []LevelState) error {
	c := o.class
	o.disposed = false
	o.constructing = true
	defer func() { o.constructing = false }()

	if err := o.leaf.initFields(); err != nil {
		return err
	}
	var levels []*level
	o.leaf.walk(func(l *level) { levels = append(levels, l) })
	if len(levels) != len(states) {
		return instErr(c.name, "snapshot has %d levels, class has %d", len(states), len(levels))
	}
	for i, l := range levels {
		st := states[i]
		if st.Class != l.class.name {
			return instErr(c.name, "snapshot level %d is %q, want %q", i, st.Class, l.class.name)
		}
		for _, fs := range l.fields {
			v, ok := st.Fields[fs.scope.vis.String()][fs.name]
			if !ok {
				continue
			}
			if err := fs.restoreValue(v); err != nil {
				return err
			}
		}
	}
	o.leaf.lockConsts()
	return nil
}
