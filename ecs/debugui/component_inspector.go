package debugui

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/kestrel/ecs"
)

type FieldInfo struct {
	Name      string
	Type      reflect.Type
	Index     int
	IsPointer bool
}

type fieldCache struct {
	mu     sync.RWMutex
	fields map[reflect.Type][]FieldInfo
}

var inspectorFields = &fieldCache{fields: make(map[reflect.Type][]FieldInfo)}

var uniqueMarkerType = reflect.TypeFor[ecs.Unique]()

// get lists the exported fields of a struct type, skipping the uniqueness marker.
func (fc *fieldCache) get(t reflect.Type) []FieldInfo {
	fc.mu.RLock()
	cached, ok := fc.fields[t]
	fc.mu.RUnlock()
	if ok {
		return cached
	}

	fc.mu.Lock()
	defer fc.mu.Unlock()

	var fields []FieldInfo
	if t.Kind() == reflect.Struct {
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if !field.IsExported() || field.Type == uniqueMarkerType {
				continue
			}

			fieldType := field.Type
			isPointer := fieldType.Kind() == reflect.Ptr
			if isPointer {
				fieldType = fieldType.Elem()
			}

			fields = append(fields, FieldInfo{
				Name:      field.Name,
				Type:      fieldType,
				Index:     i,
				IsPointer: isPointer,
			})
		}
	}

	fc.fields[t] = fields
	return fields
}

func NewComponentInspector() ComponentInspector {
	return ComponentInspector{}
}

func (ci *ComponentInspector) Render(ctx *Context) {
	if !imgui.BeginV("Component Inspector", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	if !ctx.Selected.Valid() {
		imgui.Text("No entity selected")
		imgui.End()
		return
	}

	found := ctx.Entities.Get(ctx.Selected, func(entity *ecs.Entity) {
		store := entity.Components()
		imgui.Text(fmt.Sprintf("Entity ID: %d", entity.Id()))
		imgui.Text(fmt.Sprintf("Components: %d (%d unique)", store.Len(), store.UniqueCount()))
		imgui.Separator()

		i := 0
		for ref := range store.All() {
			ci.renderComponent(ref, i)
			i++
		}
	})
	if !found {
		imgui.Text(fmt.Sprintf("Entity %d not found", ctx.Selected))
	}

	imgui.End()
}

// renderComponent draws one component. Edits are collected while the
// component is read and applied afterwards under an exclusive borrow.
func (ci *ComponentInspector) renderComponent(ref *ecs.ErasedRef, index int) {
	kind := ref.Kind()
	label := kind.Name()
	if kind.Unique {
		label += " (unique)"
	}

	// The id suffix keeps tree node ids apart for repeated regular components.
	if !imgui.TreeNodeStr(fmt.Sprintf("%s##%d", label, index)) {
		return
	}
	defer imgui.TreePop()

	var edits []fieldEdit
	err := ref.TryRead(func(c ecs.Component) {
		val := reflect.ValueOf(c).Elem()
		if val.Kind() != reflect.Struct {
			if edit, ok := renderValue("value", val, nil); ok {
				edits = append(edits, edit)
			}
			return
		}
		edits = renderFields(val, nil)
	})
	if err != nil {
		imgui.Text("<borrowed>")
		return
	}

	if len(edits) == 0 {
		return
	}
	if err := ref.TryWrite(func(c ecs.Component) {
		applyEdits(reflect.ValueOf(c).Elem(), edits)
	}); err != nil {
		imgui.Text("<edit dropped: borrowed>")
	}
}

// fieldEdit is one pending change: the field index path from the component
// root and the new value.
type fieldEdit struct {
	path  []int
	value any
}

func renderFields(val reflect.Value, path []int) []fieldEdit {
	var edits []fieldEdit
	for _, field := range inspectorFields.get(val.Type()) {
		fieldVal := val.Field(field.Index)
		fieldPath := append(append([]int(nil), path...), field.Index)

		if field.IsPointer {
			if fieldVal.IsNil() {
				imgui.Text(fmt.Sprintf("%s: nil", field.Name))
				continue
			}
			imgui.Text(fmt.Sprintf("%s: %s", field.Name, describeValue(fieldVal.Elem())))
			continue
		}

		if fieldVal.Kind() == reflect.Struct {
			if imgui.TreeNodeStr(field.Name) {
				edits = append(edits, renderFields(fieldVal, fieldPath)...)
				imgui.TreePop()
			}
			continue
		}

		if edit, ok := renderValue(field.Name, fieldVal, fieldPath); ok {
			edits = append(edits, edit)
		}
	}
	return edits
}

func renderValue(name string, val reflect.Value, path []int) (fieldEdit, bool) {
	switch val.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v := int32(val.Int())
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		if imgui.InputInt(fmt.Sprintf("##%s", name), &v) {
			return fieldEdit{path: path, value: int64(v)}, true
		}

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v := int32(val.Uint())
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		if imgui.InputInt(fmt.Sprintf("##%s", name), &v) && v >= 0 {
			return fieldEdit{path: path, value: uint64(v)}, true
		}

	case reflect.Float32, reflect.Float64:
		v := float32(val.Float())
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		if imgui.InputFloat(fmt.Sprintf("##%s", name), &v) {
			return fieldEdit{path: path, value: float64(v)}, true
		}

	case reflect.Bool:
		v := val.Bool()
		if imgui.Checkbox(name, &v) {
			return fieldEdit{path: path, value: v}, true
		}

	case reflect.String:
		v := val.String()
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(200)
		if imgui.InputTextWithHint(fmt.Sprintf("##%s", name), "", &v, imgui.InputTextFlagsNone, nil) {
			return fieldEdit{path: path, value: v}, true
		}

	default:
		imgui.Text(fmt.Sprintf("%s: %s", name, describeValue(val)))
	}

	return fieldEdit{}, false
}

func describeValue(val reflect.Value) string {
	switch val.Kind() {
	case reflect.Slice, reflect.Array:
		return fmt.Sprintf("[%d items]", val.Len())
	case reflect.Map:
		return fmt.Sprintf("map[%d items]", val.Len())
	case reflect.Func:
		if val.IsNil() {
			return "nil func"
		}
		return "func"
	case reflect.Interface:
		if val.IsNil() {
			return "nil"
		}
		return val.Elem().Type().String()
	case reflect.Struct:
		return val.Type().String()
	default:
		if !val.CanInterface() {
			return val.Type().String()
		}
		return fmt.Sprintf("%v", val.Interface())
	}
}

// applyEdits writes pending edits into root, which must be addressable.
func applyEdits(root reflect.Value, edits []fieldEdit) {
	for _, edit := range edits {
		field := root
		if len(edit.path) > 0 {
			field = root.FieldByIndex(edit.path)
		}
		setValue(field, edit.value)
	}
}

func setValue(field reflect.Value, value any) {
	if !field.CanSet() {
		return
	}

	switch v := value.(type) {
	case int64:
		switch field.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			field.SetInt(v)
		}
	case uint64:
		switch field.Kind() {
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			field.SetUint(v)
		}
	case float64:
		switch field.Kind() {
		case reflect.Float32, reflect.Float64:
			field.SetFloat(v)
		}
	case bool:
		if field.Kind() == reflect.Bool {
			field.SetBool(v)
		}
	case string:
		if field.Kind() == reflect.String {
			field.SetString(v)
		}
	}
}
