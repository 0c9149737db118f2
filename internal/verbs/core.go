package verbs

import (
	"context"
	"fmt"
	"time"
)

// registerCoreVerbs registers every verb with original_source/wwise_mcp.py
// bespoke validation logic — the hand-written functions, as opposed to the
// long tail of one-line WwisePythonLibrary._wrap(...) passthroughs
// (registered separately in passthrough.go).
func registerCoreVerbs(r *Registry) {
	r.add(Entry{
		Name:      "list_all_event_names",
		Signature: "",
		Doc:       "List the names of every Event object in the project.",
		Mutating:  false,
		Adapter:   listAllEventNames,
	})
	r.add(Entry{
		Name:      "list_all_rtpc_names",
		Doc:       "List the names of every game parameter (RTPC) in the project.",
		Mutating:  false,
		Adapter:   listAllRTPCNames,
	})
	r.add(Entry{
		Name:      "list_all_switchgroups_and_switches",
		Doc:       "List every switch group and its child switches, grouped.",
		Mutating:  false,
		Adapter:   listAllSwitchGroupsAndSwitches,
	})
	r.add(Entry{
		Name:      "list_all_stategroups_and_states",
		Doc:       "List every state group and its child states, grouped.",
		Mutating:  false,
		Adapter:   listAllStateGroupsAndStates,
	})
	r.add(Entry{
		Name:      "list_all_game_objects",
		Doc:       "List every registered game object in the current session.",
		Mutating:  false,
		Adapter:   listAllGameObjects,
	})
	r.add(Entry{
		Name:      "get_project_info",
		Doc:       "Return top-level project metadata (name, platforms, path).",
		Mutating:  false,
		Adapter:   getProjectInfo,
	})
	r.add(Entry{
		Name:      "get_selected_objects",
		Doc:       "Return the objects currently selected in the authoring UI.",
		Mutating:  false,
		Adapter:   getSelectedObjects,
	})
	r.add(Entry{
		Name:      "get_all_property_name_valid_values",
		Doc:       "Return the valid value ranges for every known object property.",
		Mutating:  false,
		Adapter:   getAllPropertyNameValidValues,
	})
	r.add(Entry{
		Name:      "resolve_descendants",
		Signature: "parent_path",
		Doc:       "Resolve every descendant object path under parent_path.",
		Mutating:  false,
		Adapter:   resolveDescendants,
	})

	r.add(Entry{
		Name:      "create_objects",
		Signature: "child_names, child_types, parent_paths, prev_response_objects=None",
		Doc:       "Create one child object per (name, type, parent) triple.",
		Mutating:  true,
		Adapter:   createObjects,
	})
	r.add(Entry{
		Name:      "create_events",
		Signature: "source_paths, dst_parent_paths, event_types, event_names",
		Doc:       "Create one Event object per (source, destination, type, name) quadruple.",
		Mutating:  true,
		Adapter:   createEvents,
	})
	r.add(Entry{
		Name:      "create_game_objects",
		Signature: "game_obj_names, positions",
		Doc:       "Register game objects at the given positions.",
		Mutating:  true,
		Adapter:   createGameObjects,
	})
	r.add(Entry{
		Name:      "create_rtpcs",
		Signature: "rtpc_names, parent_paths, min_value, max_value",
		Doc:       "Create game parameters with the given ranges.",
		Mutating:  true,
		Adapter:   createRTPCs,
	})
	r.add(Entry{
		Name:      "create_switch_groups",
		Signature: "names, parent_paths",
		Doc:       "Create switch groups.",
		Mutating:  true,
		Adapter:   createSwitchGroups,
	})
	r.add(Entry{
		Name:      "create_switches",
		Signature: "names, parent_paths",
		Doc:       "Create switches under an existing switch group.",
		Mutating:  true,
		Adapter:   createSwitches,
	})
	r.add(Entry{
		Name:      "create_state_groups",
		Signature: "names, parent_paths",
		Doc:       "Create state groups.",
		Mutating:  true,
		Adapter:   createStateGroups,
	})
	r.add(Entry{
		Name:      "create_states",
		Signature: "names, parent_paths",
		Doc:       "Create states under an existing state group.",
		Mutating:  true,
		Adapter:   createStates,
	})
	r.add(Entry{
		Name:      "move_object_by_path",
		Signature: "source_path, destination_parent_path",
		Doc:       "Move an object to a new parent.",
		Mutating:  true,
		Adapter:   moveObjectByPath,
	})
	r.add(Entry{
		Name:      "rename_objects",
		Signature: "paths_of_objects_to_rename, prev_response_objects, names",
		Doc:       "Rename objects, resolved either by path or by a prior step's result.",
		Mutating:  true,
		Adapter:   renameObjects,
	})
	r.add(Entry{
		Name:      "import_audio",
		Signature: "source_paths, destination_paths",
		Doc:       "Import audio source files into the project at the given destinations.",
		Mutating:  true,
		Adapter:   importAudio,
	})
	r.add(Entry{
		Name:      "set_object_property",
		Signature: "object_path, property_name, value",
		Doc:       "Set a single property on an object.",
		Mutating:  true,
		Adapter:   setObjectProperty,
	})
	r.add(Entry{
		Name:      "set_object_reference",
		Signature: "object_path, reference_type, reference_path",
		Doc:       "Set a named reference on an object to point at another object.",
		Mutating:  true,
		Adapter:   setObjectReference,
	})
	r.add(Entry{
		Name:      "include_in_soundbank",
		Signature: "include_paths, soundbank_path",
		Doc:       "Include the given event paths in a soundbank's inclusion list.",
		Mutating:  true,
		Adapter:   includeInSoundbank,
	})
	r.add(Entry{
		Name:      "generate_soundbanks",
		Signature: "soundbank_names, platforms, languages",
		Doc:       "Generate the named soundbanks for the given platforms/languages.",
		Mutating:  true,
		Adapter:   generateSoundbanks,
	})
	r.add(Entry{
		Name:      "unregister_game_object",
		Signature: "name",
		Doc:       "Unregister a previously created game object.",
		Mutating:  true,
		Adapter:   unregisterGameObject,
	})
	r.add(Entry{
		Name:      "toggle_layout",
		Signature: "requested_layout",
		Doc:       "Switch the authoring UI to the named layout.",
		Mutating:  true,
		Adapter:   toggleLayout,
	})
	r.add(Entry{
		Name:      "move_game_obj",
		Signature: "game_obj_name, start_pos, end_pos, duration_ms, delay_ms",
		Doc:       "Ramp a game object's position from start_pos to end_pos over duration_ms.",
		Mutating:  true,
		Adapter:   moveGameObj,
	})

	// Sound-engine verbs. post_event with delay_ms > 0 is the one
	// fire-and-forget call here (spec scenario #3); the others wait for a reply.
	r.add(Entry{
		Name:      "post_event",
		Signature: "event_name, game_obj_name, delay_ms=0",
		Doc:       "Post an Event on a game object, optionally scheduled delay_ms in the future.",
		Mutating:  false,
		Adapter:   postEvent,
	})
	r.add(Entry{
		Name:      "stop_all_sounds",
		Doc:       "Stop all currently playing sounds.",
		Mutating:  false,
		Adapter:   stopAllSounds,
	})
	r.add(Entry{
		Name:      "set_rtpc",
		Signature: "rtpc_name, start, end, duration, game_object_name=None",
		Doc:       "Ramp an RTPC value from start to end over duration ms, globally or on one game object.",
		Mutating:  true,
		Adapter:   setRTPC,
	})
	r.add(Entry{
		Name:      "set_state",
		Signature: "state_group, state, delay_ms=0",
		Doc:       "Set a state group's active state.",
		Mutating:  true,
		Adapter:   setState,
	})
	r.add(Entry{
		Name:      "set_switch",
		Signature: "switch_group, switch, delay_ms=0, game_object_name=None",
		Doc:       "Set a switch group's active switch, globally or on one game object.",
		Mutating:  true,
		Adapter:   setSwitch,
	})
}

func listAllEventNames(ctx context.Context, c *Context, args map[string]any) (any, error) {
	return c.call(ctx, "core.object.get", map[string]any{
		"from":  map[string]any{"path": []string{`\Events`}},
		"where": []any{[]any{"type", "equals", "Event"}},
	}, map[string]any{"return": []string{"name"}}, 0)
}

func listAllRTPCNames(ctx context.Context, c *Context, args map[string]any) (any, error) {
	return c.call(ctx, "core.object.get", map[string]any{
		"from":  map[string]any{"path": []string{`\Game Parameters`}},
		"where": []any{[]any{"type", "equals", "GameParameter"}},
	}, map[string]any{"return": []string{"name"}}, 0)
}

func listAllSwitchGroupsAndSwitches(ctx context.Context, c *Context, args map[string]any) (any, error) {
	return c.call(ctx, "core.object.get", map[string]any{
		"from":  map[string]any{"path": []string{`\Switches`}},
		"where": []any{[]any{"type", "isIn", []string{"SwitchGroup", "Switch"}}},
	}, map[string]any{"return": []string{"name", "type", "parent"}}, 0)
}

func listAllStateGroupsAndStates(ctx context.Context, c *Context, args map[string]any) (any, error) {
	return c.call(ctx, "core.object.get", map[string]any{
		"from":  map[string]any{"path": []string{`\States`}},
		"where": []any{[]any{"type", "isIn", []string{"StateGroup", "State"}}},
	}, map[string]any{"return": []string{"name", "type", "parent"}}, 0)
}

func listAllGameObjects(ctx context.Context, c *Context, args map[string]any) (any, error) {
	return c.call(ctx, "core.profiler.getGameObjects", nil, nil, 0)
}

func getProjectInfo(ctx context.Context, c *Context, args map[string]any) (any, error) {
	return c.call(ctx, "core.getInfo", nil, nil, 0)
}

func getSelectedObjects(ctx context.Context, c *Context, args map[string]any) (any, error) {
	result, err := c.call(ctx, "ui.getSelectedObjects", nil, nil, 0)
	if err != nil {
		return nil, err
	}
	if isEmptyResult(result) {
		return nil, valErr("", "no selection detected", nil)
	}
	return result, nil
}

func isEmptyResult(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case []any:
		return len(t) == 0
	case map[string]any:
		objs, ok := t["objects"].([]any)
		return ok && len(objs) == 0
	default:
		return false
	}
}

func getAllPropertyNameValidValues(ctx context.Context, c *Context, args map[string]any) (any, error) {
	return c.call(ctx, "waapi.getSchema", nil, nil, 0)
}

func resolveDescendants(ctx context.Context, c *Context, args map[string]any) (any, error) {
	parentPath, err := reqString(args, "parent_path")
	if err != nil {
		return nil, err
	}
	return c.call(ctx, "core.object.get", map[string]any{
		"from": map[string]any{"path": []string{parentPath}},
	}, map[string]any{"return": []string{"id", "path"}}, 0)
}

func createObjects(ctx context.Context, c *Context, args map[string]any) (any, error) {
	childNames, err := reqStringSlice(args, "child_names")
	if err != nil {
		return nil, err
	}
	childTypes, err := reqStringSlice(args, "child_types")
	if err != nil {
		return nil, err
	}
	parentPaths := optStringSlice(args, "parent_paths")
	prevObjects := anySlice(args, "prev_response_objects")

	var parentIDs []any
	if len(prevObjects) > 0 {
		parentIDs = make([]any, len(prevObjects))
		for i, o := range prevObjects {
			m, ok := o.(map[string]any)
			if !ok {
				return nil, valErr("prev_response_objects", "each entry must be an object with an id field", o)
			}
			id, ok := m["id"]
			if !ok {
				return nil, valErr("prev_response_objects", "one or more parent objects are missing an id field", o)
			}
			parentIDs[i] = id
		}
	} else if len(parentPaths) > 0 {
		parentIDs = make([]any, len(parentPaths))
		for i, p := range parentPaths {
			parentIDs[i] = p
		}
	} else {
		return nil, valErr("parent_paths", "both prev_response_objects and parent_paths are empty; specify at least one", nil)
	}

	if err := sameLength("child_names, child_types, and parents must have the same length", childNames, childTypes); err != nil {
		return nil, err
	}
	if len(parentIDs) != len(childNames) {
		return nil, valErr("", "child_names/child_types and resolved parents must have the same length", nil)
	}

	results := make([]any, 0, len(childNames))
	for i := range childNames {
		res, err := c.call(ctx, "core.object.create", map[string]any{
			"parent": parentIDs[i],
			"name":   childNames[i],
			"type":   childTypes[i],
		}, nil, 0)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

func createEvents(ctx context.Context, c *Context, args map[string]any) (any, error) {
	sourcePaths, err := reqStringSlice(args, "source_paths")
	if err != nil {
		return nil, err
	}
	dstParentPaths, err := reqStringSlice(args, "dst_parent_paths")
	if err != nil {
		return nil, err
	}
	eventTypes, err := reqStringSlice(args, "event_types")
	if err != nil {
		return nil, err
	}
	eventNames, err := reqStringSlice(args, "event_names")
	if err != nil {
		return nil, err
	}
	if err := sameLength("all input lists must have the same length when creating events", sourcePaths, dstParentPaths, eventTypes, eventNames); err != nil {
		return nil, err
	}

	results := make([]any, 0, len(sourcePaths))
	for i := range sourcePaths {
		res, err := c.call(ctx, "core.object.create", map[string]any{
			"parent":     dstParentPaths[i],
			"name":       eventNames[i],
			"type":       "Event",
			"sourcePath": sourcePaths[i],
			"eventType":  eventTypes[i],
		}, nil, 0)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

func createGameObjects(ctx context.Context, c *Context, args map[string]any) (any, error) {
	names, err := reqStringSlice(args, "game_obj_names")
	if err != nil {
		return nil, err
	}
	positions := anySlice(args, "positions")
	if len(positions) != len(names) {
		return nil, valErr("positions", "must have the same length as game_obj_names (strict zip)", nil)
	}

	results := make([]any, 0, len(names))
	for i, name := range names {
		res, err := c.call(ctx, "core.profiler.registerGameObject", map[string]any{
			"name":     name,
			"position": positions[i],
		}, nil, 0)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

func createRTPCs(ctx context.Context, c *Context, args map[string]any) (any, error) {
	names, err := reqStringSlice(args, "rtpc_names")
	if err != nil {
		return nil, err
	}
	parentPaths, err := reqStringSlice(args, "parent_paths")
	if err != nil {
		return nil, err
	}
	minValues, err := reqFloatSlice(args, "min_value")
	if err != nil {
		return nil, err
	}
	maxValues, err := reqFloatSlice(args, "max_value")
	if err != nil {
		return nil, err
	}
	if err := sameLength("rtpc_names, parent_paths, min_value, max_value must have the same length", names, parentPaths); err != nil {
		return nil, err
	}
	if len(minValues) != len(names) || len(maxValues) != len(names) {
		return nil, valErr("", "rtpc_names, parent_paths, min_value, max_value must have the same length", nil)
	}

	results := make([]any, 0, len(names))
	for i := range names {
		if minValues[i] > maxValues[i] {
			return results, valErr("min_value", fmt.Sprintf("invalid rtpc range for %q", names[i]), nil)
		}
		res, err := c.call(ctx, "core.object.create", map[string]any{
			"parent": parentPaths[i],
			"name":   names[i],
			"type":   "GameParameter",
			"min":    minValues[i],
			"max":    maxValues[i],
		}, nil, 0)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

func createSwitchOrStateType(ctx context.Context, c *Context, names, parentPaths []string, objType string) (any, error) {
	if len(names) != len(parentPaths) {
		return nil, valErr("", fmt.Sprintf("length mismatch: names=%d parent_paths=%d", len(names), len(parentPaths)), nil)
	}
	results := make([]any, 0, len(names))
	for i := range names {
		res, err := c.call(ctx, "core.object.create", map[string]any{
			"parent": parentPaths[i],
			"name":   names[i],
			"type":   objType,
		}, nil, 0)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

func createSwitchGroups(ctx context.Context, c *Context, args map[string]any) (any, error) {
	names, err := reqStringSlice(args, "names")
	if err != nil {
		return nil, err
	}
	parentPaths, err := reqStringSlice(args, "parent_paths")
	if err != nil {
		return nil, err
	}
	return createSwitchOrStateType(ctx, c, names, parentPaths, "SwitchGroup")
}

func createSwitches(ctx context.Context, c *Context, args map[string]any) (any, error) {
	names, err := reqStringSlice(args, "names")
	if err != nil {
		return nil, err
	}
	parentPaths, err := reqStringSlice(args, "parent_paths")
	if err != nil {
		return nil, err
	}
	return createSwitchOrStateType(ctx, c, names, parentPaths, "Switch")
}

func createStateGroups(ctx context.Context, c *Context, args map[string]any) (any, error) {
	names, err := reqStringSlice(args, "names")
	if err != nil {
		return nil, err
	}
	parentPaths, err := reqStringSlice(args, "parent_paths")
	if err != nil {
		return nil, err
	}
	return createSwitchOrStateType(ctx, c, names, parentPaths, "StateGroup")
}

func createStates(ctx context.Context, c *Context, args map[string]any) (any, error) {
	names, err := reqStringSlice(args, "names")
	if err != nil {
		return nil, err
	}
	parentPaths, err := reqStringSlice(args, "parent_paths")
	if err != nil {
		return nil, err
	}
	return createSwitchOrStateType(ctx, c, names, parentPaths, "State")
}

func moveObjectByPath(ctx context.Context, c *Context, args map[string]any) (any, error) {
	src, err := reqString(args, "source_path")
	if err != nil {
		return nil, err
	}
	dst, err := reqString(args, "destination_parent_path")
	if err != nil {
		return nil, err
	}
	return c.call(ctx, "core.object.move", map[string]any{
		"object": src,
		"parent": dst,
	}, nil, 0)
}

func renameObjects(ctx context.Context, c *Context, args map[string]any) (any, error) {
	names, err := reqStringSlice(args, "names")
	if err != nil {
		return nil, err
	}

	var objects []any
	if paths := optStringSlice(args, "paths_of_objects_to_rename"); paths != nil {
		objects = make([]any, len(paths))
		for i, p := range paths {
			objects[i] = p
		}
	} else {
		objects = anySlice(args, "prev_response_objects")
	}

	if len(objects) == 0 {
		return nil, valErr("", "pass in either paths_of_objects_to_rename or prev_response_objects=\"$last\"", nil)
	}

	filtered := make([]any, 0, len(objects))
	for _, o := range objects {
		if o != nil {
			filtered = append(filtered, o)
		}
	}
	if len(filtered) == 0 {
		return nil, valErr("", "no valid objects resolved to rename", nil)
	}
	if len(filtered) != len(names) {
		return nil, valErr("", fmt.Sprintf("length mismatch: objects=%d names=%d", len(filtered), len(names)), nil)
	}

	results := make([]any, 0, len(filtered))
	for i, obj := range filtered {
		res, err := c.call(ctx, "core.object.setName", map[string]any{
			"object": obj,
			"name":   names[i],
		}, nil, 0)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

func importAudio(ctx context.Context, c *Context, args map[string]any) (any, error) {
	sourcePaths, err := reqStringSlice(args, "source_paths")
	if err != nil {
		return nil, err
	}
	destPaths, err := reqStringSlice(args, "destination_paths")
	if err != nil {
		return nil, err
	}
	if len(sourcePaths) != len(destPaths) {
		return nil, valErr("", "source_paths and destination_paths must have the same length", nil)
	}
	return c.call(ctx, "audio.import", map[string]any{
		"sourcePaths":      sourcePaths,
		"destinationPaths": destPaths,
	}, nil, 0)
}

func setObjectProperty(ctx context.Context, c *Context, args map[string]any) (any, error) {
	objectPath, err := reqString(args, "object_path")
	if err != nil {
		return nil, err
	}
	propertyName, err := reqString(args, "property_name")
	if err != nil {
		return nil, err
	}
	value, ok := args["value"]
	if !ok || value == nil {
		return nil, valErr("value", "value cannot be nil", nil)
	}
	if s, ok := value.(string); ok && s == "" {
		return nil, valErr("value", "string values cannot be empty", value)
	}
	return c.call(ctx, "core.object.setProperty", map[string]any{
		"object":   objectPath,
		"property": propertyName,
		"value":    value,
	}, nil, 0)
}

func setObjectReference(ctx context.Context, c *Context, args map[string]any) (any, error) {
	objectPath, err := reqString(args, "object_path")
	if err != nil {
		return nil, err
	}
	refType, err := reqString(args, "reference_type")
	if err != nil {
		return nil, err
	}
	refPath, ok := args["reference_path"]
	if !ok || refPath == nil {
		return nil, valErr("reference_path", "value cannot be nil", nil)
	}
	if s, ok := refPath.(string); ok && s == "" {
		return nil, valErr("reference_path", "string values cannot be empty", refPath)
	}
	return c.call(ctx, "core.object.setReference", map[string]any{
		"object":    objectPath,
		"reference": refType,
		"value":     refPath,
	}, nil, 0)
}

func includeInSoundbank(ctx context.Context, c *Context, args map[string]any) (any, error) {
	includePaths, err := reqStringSlice(args, "include_paths")
	if err != nil {
		return nil, err
	}
	for _, p := range includePaths {
		if p == "" {
			return nil, valErr("include_paths", "elements must be non-empty", includePaths)
		}
	}
	soundbankPath, err := reqString(args, "soundbank_path")
	if err != nil {
		return nil, err
	}
	return c.call(ctx, "core.soundbank.setInclusions", map[string]any{
		"soundbank": soundbankPath,
		"includes":  includePaths,
	}, nil, 0)
}

func generateSoundbanks(ctx context.Context, c *Context, args map[string]any) (any, error) {
	names, err := reqStringSlice(args, "soundbank_names")
	if err != nil {
		return nil, err
	}
	platforms, err := reqStringSlice(args, "platforms")
	if err != nil {
		return nil, err
	}
	languages := optStringSlice(args, "languages")
	return c.call(ctx, "core.soundbank.generate", map[string]any{
		"soundbanks": names,
		"platforms":  platforms,
		"languages":  languages,
	}, nil, 0)
}

func unregisterGameObject(ctx context.Context, c *Context, args map[string]any) (any, error) {
	name, err := reqString(args, "name")
	if err != nil {
		return nil, err
	}
	return c.call(ctx, "core.profiler.unregisterGameObject", map[string]any{"name": name}, nil, 0)
}

func toggleLayout(ctx context.Context, c *Context, args map[string]any) (any, error) {
	layout, err := reqString(args, "requested_layout")
	if err != nil {
		return nil, err
	}
	return c.call(ctx, "ui.layout.switchLayout", map[string]any{"layout": layout}, nil, 0)
}

func moveGameObj(ctx context.Context, c *Context, args map[string]any) (any, error) {
	name, err := reqString(args, "game_obj_name")
	if err != nil {
		return nil, err
	}
	startPos, ok := args["start_pos"]
	if !ok {
		return nil, valErr("start_pos", "is required", nil)
	}
	endPos, ok := args["end_pos"]
	if !ok {
		return nil, valErr("end_pos", "is required", nil)
	}
	durationMs, err := reqNonNegInt(args, "duration_ms")
	if err != nil {
		return nil, err
	}
	delayMs, err := reqNonNegInt(args, "delay_ms")
	if err != nil {
		return nil, err
	}
	return c.call(ctx, "soundengine.setMultiplePositions", map[string]any{
		"gameObject": name,
		"startPos":   startPos,
		"endPos":     endPos,
		"durationMs": durationMs,
		"delayMs":    delayMs,
		"stepMs":     100,
	}, nil, 0)
}

func postEvent(ctx context.Context, c *Context, args map[string]any) (any, error) {
	eventName, err := reqString(args, "event_name")
	if err != nil {
		return nil, err
	}
	gameObjName := optString(args, "game_obj_name", "Global")
	delayMs, err := reqNonNegIntDefault(args, "delay_ms", 0)
	if err != nil {
		return nil, err
	}

	callArgs := map[string]any{"event": eventName, "gameObject": gameObjName}
	if delayMs <= 0 {
		return c.call(ctx, "soundengine.postEvent", callArgs, nil, 0)
	}
	// Fire-and-forget: the caller does not wait on the scheduled delivery
	// (spec scenario #3); the step returns immediately.
	err = c.fireAndForget("soundengine.postEvent", callArgs, nil, time.Millisecond*time.Duration(delayMs))
	return nil, err
}

func reqNonNegIntDefault(args map[string]any, key string, def int) (int, error) {
	if _, ok := args[key]; !ok {
		return def, nil
	}
	return reqNonNegInt(args, key)
}

func stopAllSounds(ctx context.Context, c *Context, args map[string]any) (any, error) {
	return c.call(ctx, "soundengine.stopAll", nil, nil, 0)
}

func setRTPC(ctx context.Context, c *Context, args map[string]any) (any, error) {
	rtpcName, err := reqString(args, "rtpc_name")
	if err != nil {
		return nil, err
	}
	start, err := reqFloat(args, "start")
	if err != nil {
		return nil, err
	}
	end, err := reqFloat(args, "end")
	if err != nil {
		return nil, err
	}
	duration, err := reqNonNegInt(args, "duration")
	if err != nil {
		return nil, err
	}
	gameObjectName := optString(args, "game_object_name", "")

	callArgs := map[string]any{"rtpc": rtpcName, "start": start, "end": end, "durationMs": duration, "stepMs": 50}
	if gameObjectName != "" {
		callArgs["gameObject"] = gameObjectName
	}
	return c.call(ctx, "soundengine.setRTPCValue", callArgs, nil, 0)
}

func setState(ctx context.Context, c *Context, args map[string]any) (any, error) {
	stateGroup, err := reqString(args, "state_group")
	if err != nil {
		return nil, err
	}
	state, err := reqString(args, "state")
	if err != nil {
		return nil, err
	}
	delayMs, err := reqNonNegIntDefault(args, "delay_ms", 0)
	if err != nil {
		return nil, err
	}
	return c.call(ctx, "soundengine.setState", map[string]any{
		"stateGroup": stateGroup,
		"state":      state,
		"delayMs":    delayMs,
	}, nil, 0)
}

func setSwitch(ctx context.Context, c *Context, args map[string]any) (any, error) {
	switchGroup, err := reqString(args, "switch_group")
	if err != nil {
		return nil, err
	}
	sw, err := reqString(args, "switch")
	if err != nil {
		return nil, err
	}
	delayMs, err := reqNonNegIntDefault(args, "delay_ms", 0)
	if err != nil {
		return nil, err
	}
	gameObjectName := optString(args, "game_object_name", "")

	callArgs := map[string]any{"switchGroup": switchGroup, "switch": sw, "delayMs": delayMs}
	if gameObjectName != "" {
		callArgs["gameObject"] = gameObjectName
	}
	return c.call(ctx, "soundengine.setSwitch", callArgs, nil, 0)
}
