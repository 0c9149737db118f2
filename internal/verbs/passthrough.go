package verbs

import (
	"context"
)

// passthroughEntry describes one of the original's one-line
// WwisePythonLibrary._wrap(...) delegations: no bespoke validation, just a
// direct forward of the plan step's args to a dotted Authoring-API URI.
type passthroughEntry struct {
	name     string
	uri      string
	doc      string
	mutating bool
}

// passthroughVerbs is grounded 1:1 on the "_wrap(...)" table at the bottom
// of original_source/app/scripts/wwise_mcp.py. Each name there becomes a
// verb here; the dotted URI is this server's own naming convention over
// the (out-of-scope) Authoring-API wire surface, following the pattern
// shown in spec §6 (core.*, soundengine.*, ui.*, waapi.*).
var passthroughVerbs = []passthroughEntry{
	// Soundengine
	{"soundengine_get_state", "soundengine.getState", "Get a state group's current state.", false},
	{"soundengine_get_switch", "soundengine.getSwitch", "Get a switch group's current switch.", false},
	{"soundengine_load_bank", "soundengine.loadBank", "Load a soundbank into memory.", true},
	{"soundengine_post_msg_monitor", "soundengine.postMsgMonitor", "Post a message to the profiler's Capture Log.", false},
	{"soundengine_post_trigger", "soundengine.postTrigger", "Post a trigger.", true},
	{"soundengine_reset_rtpc_value", "soundengine.resetRTPCValue", "Reset an RTPC back to its default value.", true},
	{"soundengine_seek_on_event", "soundengine.seekOnEvent", "Seek into the currently playing media of an Event.", true},
	{"soundengine_set_game_object_aux_send_values", "soundengine.setGameObjectAuxSendValues", "Set a game object's auxiliary bus send values.", true},
	{"soundengine_set_game_object_output_bus_volume", "soundengine.setGameObjectOutputBusVolume", "Set a game object's output bus volume.", true},
	{"soundengine_set_listener_spatialization", "soundengine.setListenerSpatialization", "Enable or disable spatialization for a listener.", true},
	{"soundengine_set_multiple_positions", "soundengine.setMultiplePositions", "Set multiple emitter positions for one game object.", true},
	{"soundengine_set_object_obstruction_and_occlusion", "soundengine.setObjectObstructionAndOcclusion", "Set obstruction/occlusion values between two game objects.", true},
	{"soundengine_set_scaling_factor", "soundengine.setScalingFactor", "Set a game object's attenuation scaling factor.", true},
	{"soundengine_stop_playing_id", "soundengine.stopPlayingID", "Stop a specific playing instance by its playing id.", true},
	{"soundengine_unload_bank", "soundengine.unloadBank", "Unload a soundbank from memory.", true},

	// Console project
	{"console_project_close", "core.console.projectClose", "Close the currently open console project.", true},
	{"console_project_create", "core.console.projectCreate", "Create a new console project.", true},
	{"console_project_open", "core.console.projectOpen", "Open an existing console project.", true},

	// Core
	{"get_info", "core.getInfo", "Get authoring application version/build info.", false},
	{"core_ping", "core.ping", "Check that the Authoring API is responsive.", false},

	// Audio
	{"audio_convert", "audio.convert", "Convert audio source files using the project's conversion settings.", true},
	{"audio_import_tab_delimited", "audio.importTabDelimited", "Import audio files described by a tab-delimited manifest.", true},
	{"audio_mute", "audio.mute", "Mute the given objects.", true},
	{"audio_reset_mute", "audio.resetMute", "Clear mute state on the given objects.", true},
	{"audio_reset_solo", "audio.resetSolo", "Clear solo state on the given objects.", true},
	{"audio_set_conversion_plugin", "audio.setConversionPlugin", "Set the audio conversion plugin for an object.", true},
	{"audio_solo", "audio.solo", "Solo the given objects.", true},
	{"audio_source_peaks_get_min_max_peaks_in_region", "audio.sourcePeaks.getMinMaxPeaksInRegion", "Get min/max peak envelope for a region of an audio source.", false},
	{"audio_source_peaks_get_min_max_peaks_in_trimmed_region", "audio.sourcePeaks.getMinMaxPeaksInTrimmedRegion", "Get min/max peak envelope for a trimmed region of an audio source.", false},

	// BlendContainer
	{"blend_container_add_assignment", "blendContainer.addAssignment", "Add a child assignment to a Blend Container.", true},
	{"blend_container_add_track", "blendContainer.addTrack", "Add a track to a Blend Container.", true},
	{"blend_container_get_assignments", "blendContainer.getAssignments", "Get a Blend Container's track assignments.", false},
	{"blend_container_remove_assignment", "blendContainer.removeAssignment", "Remove a Blend Container assignment.", true},

	// SwitchContainer
	{"switch_container_add_assignment", "switchContainer.addAssignment", "Assign a child to a Switch Container's switch.", true},
	{"switch_container_get_assignments", "switchContainer.getAssignments", "Get a Switch Container's assignments.", false},
	{"switch_container_remove_assignment", "switchContainer.removeAssignment", "Remove a Switch Container assignment.", true},

	// Core executeLua, log, mediaPool
	{"execute_lua_script", "core.executeLuaScript", "Execute a Lua script inside the authoring application.", true},
	{"log_add_item", "core.log.addItem", "Add an item to the authoring application's log.", false},
	{"log_clear", "core.log.clear", "Clear the authoring application's log.", true},
	{"log_get", "core.log.get", "Get the authoring application's log items.", false},
	{"media_pool_get", "core.mediaPool.get", "Query the media pool.", false},
	{"media_pool_get_fields", "core.mediaPool.getFields", "Get field values for a media pool item.", false},

	// Object
	{"object_copy", "core.object.copy", "Copy an object to a new parent.", true},
	{"object_delete", "core.object.delete", "Delete an object.", true},
	{"object_diff", "core.object.diff", "Diff two objects' properties.", false},
	{"object_get_attenuation_curve", "core.object.getAttenuationCurve", "Get an object's attenuation curve.", false},
	{"object_get_property_and_reference_names", "core.object.getPropertyAndReferenceNames", "Get the valid property and reference names for an object type.", false},
	{"object_get_property_info", "core.object.getPropertyInfo", "Get metadata about a property.", false},
	{"object_get_property_names", "core.object.getPropertyNames", "Get the valid property names for an object type.", false},
	{"object_get_types", "core.object.getTypes", "Get the list of valid object types.", false},
	{"object_is_linked", "core.object.isLinked", "Check whether a property is linked across platforms.", false},
	{"object_is_property_enabled", "core.object.isPropertyEnabled", "Check whether a property is enabled for an object.", false},
	{"object_paste_properties", "core.object.pasteProperties", "Paste properties from one object onto others.", true},
	{"object_set", "core.object.set", "Batch-set multiple object fields in one call.", true},
	{"object_set_attenuation_curve", "core.object.setAttenuationCurve", "Set an object's attenuation curve.", true},
	{"object_set_linked", "core.object.setLinked", "Set whether a property is linked across platforms.", true},
	{"object_set_notes", "core.object.setNotes", "Set an object's notes.", true},
	{"object_set_randomizer", "core.object.setRandomizer", "Set randomizer range on a property.", true},
	{"object_set_state_groups", "core.object.setStateGroups", "Associate state groups with an object.", true},
	{"object_set_state_properties", "core.object.setStateProperties", "Set per-state property overrides on an object.", true},

	// Plugin
	{"plugin_get_list", "core.plugin.getList", "List available plugins.", false},
	{"plugin_get_properties", "core.plugin.getProperties", "Get a plugin's property schema.", false},
	{"plugin_get_property", "core.plugin.getProperty", "Get a single plugin property value.", false},

	// Profiler
	{"profiler_enable_profiler_data", "core.profiler.enableProfilerData", "Enable or disable a profiler data category.", true},
	{"profiler_get_audio_objects", "core.profiler.getAudioObjects", "Get profiler audio object data.", false},
	{"profiler_get_busses", "core.profiler.getBusses", "Get profiler bus data.", false},
	{"profiler_get_cpu_usage", "core.profiler.getCPUUsage", "Get profiler CPU usage data.", false},
	{"profiler_get_cursor_time", "core.profiler.getCursorTime", "Get the profiler capture cursor time.", false},
	{"profiler_get_loaded_media", "core.profiler.getLoadedMedia", "Get currently loaded media data.", false},
	{"profiler_get_meters", "core.profiler.getMeters", "Get registered meter values.", false},
	{"profiler_get_performance_monitor", "core.profiler.getPerformanceMonitor", "Get performance monitor counters.", false},
	{"profiler_get_rtpcs", "core.profiler.getRTPCs", "Get profiler RTPC data.", false},
	{"profiler_get_streamed_media", "core.profiler.getStreamedMedia", "Get profiler streamed media data.", false},
	{"profiler_get_voice_contributions", "core.profiler.getVoiceContributions", "Get profiler voice contribution data.", false},
	{"profiler_get_voices", "core.profiler.getVoices", "Get profiler voice data.", false},
	{"profiler_register_meter", "core.profiler.registerMeter", "Register a profiler meter.", true},
	{"profiler_save_capture", "core.profiler.saveCapture", "Save the current profiler capture to disk.", true},
	{"profiler_start_capture", "core.profiler.startCapture", "Start a profiler capture.", true},
	{"profiler_stop_capture", "core.profiler.stopCapture", "Stop the current profiler capture.", true},
	{"profiler_unregister_meter", "core.profiler.unregisterMeter", "Unregister a profiler meter.", true},

	// Project, remote, sound
	{"project_save", "core.project.save", "Save the current project.", true},
	{"remote_connect", "core.remote.connect", "Connect to a remote console target.", true},
	{"remote_disconnect", "core.remote.disconnect", "Disconnect from a remote console target.", true},
	{"remote_get_available_consoles", "core.remote.getAvailableConsoles", "List discoverable remote console targets.", false},
	{"remote_get_connection_status", "core.remote.getConnectionStatus", "Get the current remote connection status.", false},
	{"sound_set_active_source", "core.sound.setActiveSource", "Set a Sound object's active source.", true},

	// Soundbank
	{"soundbank_get_inclusions", "core.soundbank.getInclusions", "Get a soundbank's inclusion list.", false},
	{"soundbank_process_definition_files", "core.soundbank.processDefinitionFiles", "Process SoundBank definition files.", true},
	{"soundbank_convert_external_sources", "core.soundbank.convertExternalSources", "Convert external sources for soundbank generation.", true},

	// SourceControl
	{"source_control_add", "core.sourceControl.add", "Add files to source control.", true},
	{"source_control_check_out", "core.sourceControl.checkOut", "Check out files from source control.", true},
	{"source_control_commit", "core.sourceControl.commit", "Commit files to source control.", true},
	{"source_control_delete", "core.sourceControl.delete", "Delete files from source control.", true},
	{"source_control_get_source_files", "core.sourceControl.getSourceFiles", "List source-controlled files for an object.", false},
	{"source_control_get_status", "core.sourceControl.getStatus", "Get source control status for files.", false},
	{"source_control_move", "core.sourceControl.move", "Move source-controlled files.", true},
	{"source_control_revert", "core.sourceControl.revert", "Revert source-controlled files.", true},
	{"source_control_set_provider", "core.sourceControl.setProvider", "Set the active source control provider.", true},

	// Transport
	{"transport_create", "core.transport.create", "Create a transport object for playback control.", true},
	{"transport_destroy", "core.transport.destroy", "Destroy a transport object.", true},
	{"transport_execute_action", "core.transport.executeAction", "Execute a transport action (play/pause/stop/etc).", true},
	{"transport_get_list", "core.transport.getList", "List active transport objects.", false},
	{"transport_get_state", "core.transport.getState", "Get a transport object's playback state.", false},
	{"transport_prepare", "core.transport.prepare", "Prepare a transport object for playback.", true},

	// Undo
	{"undo_begin_group", "core.undo.beginGroup", "Begin an undo group bracketing subsequent mutations.", true},
	{"undo_cancel_group", "core.undo.cancelGroup", "Cancel the currently open undo group, rolling it back.", true},
	{"undo_end_group", "core.undo.endGroup", "Commit the currently open undo group.", true},
	{"undo_redo", "core.undo.redo", "Redo the last undone operation.", true},
	{"undo_undo", "core.undo.undo", "Undo the last operation.", true},

	// WorkUnit
	{"work_unit_load", "core.workUnit.load", "Load a detached work unit into the project.", true},
	{"work_unit_unload", "core.workUnit.unload", "Unload a work unit from the project.", true},

	// Debug
	{"debug_enable_asserts", "core.debug.enableAsserts", "Enable or disable internal assertions.", true},
	{"debug_enable_automation_mode", "core.debug.enableAutomationMode", "Enable or disable automation mode (suppresses UI prompts).", true},
	{"debug_generate_tone_wav", "core.debug.generateToneWav", "Generate a test tone .wav file.", true},
	{"debug_get_wal_tree", "core.debug.getWALTree", "Dump the internal WAL object tree for diagnostics.", false},
	{"debug_restart_waapi_servers", "core.debug.restartWaapiServers", "Restart the Authoring API's WebSocket servers.", true},
	{"debug_test_assert", "core.debug.testAssert", "Trigger a test assertion.", true},
	{"debug_test_crash", "core.debug.testCrash", "Trigger a deliberate crash for testing.", true},
	{"debug_validate_call", "core.debug.validateCall", "Validate a call's arguments without executing it.", false},

	// UI
	{"ui_bring_to_foreground", "ui.bringToForeground", "Bring the authoring application window to the foreground.", true},
	{"ui_capture_screen", "ui.captureScreen", "Capture a screenshot of a UI element.", false},
	{"ui_commands_execute", "ui.commands.execute", "Execute a registered UI command.", true},
	{"ui_commands_get_commands", "ui.commands.getCommands", "List registered UI commands.", false},
	{"ui_commands_register", "ui.commands.register", "Register a UI command.", true},
	{"ui_commands_unregister", "ui.commands.unregister", "Unregister a UI command.", true},
	{"ui_get_selected_files", "ui.getSelectedFiles", "Get files currently selected in a file-browsing view.", false},
	{"ui_layout_close_view", "ui.layout.closeView", "Close a docked view.", true},
	{"ui_layout_dock_view", "ui.layout.dockView", "Dock a view into the layout.", true},
	{"ui_layout_get_current_layout_name", "ui.layout.getCurrentLayoutName", "Get the name of the active layout.", false},
	{"ui_layout_get_element_rectangle", "ui.layout.getElementRectangle", "Get a UI element's screen rectangle.", false},
	{"ui_layout_get_layout", "ui.layout.getLayout", "Get a layout's definition.", false},
	{"ui_layout_get_layout_names", "ui.layout.getLayoutNames", "List available layout names.", false},
	{"ui_layout_get_or_create_view", "ui.layout.getOrCreateView", "Get or create a view instance.", true},
	{"ui_layout_get_view_instances", "ui.layout.getViewInstances", "List live view instances.", false},
	{"ui_layout_get_view_types", "ui.layout.getViewTypes", "List known view types.", false},
	{"ui_layout_move_splitter", "ui.layout.moveSplitter", "Move a layout splitter.", true},
	{"ui_layout_remove_layout", "ui.layout.removeLayout", "Remove a saved layout.", true},
	{"ui_layout_reset_layouts", "ui.layout.resetLayouts", "Reset all layouts to defaults.", true},
	{"ui_layout_set_layout", "ui.layout.setLayout", "Apply a layout definition.", true},
	{"ui_layout_undock_view", "ui.layout.undockView", "Undock a view.", true},
	{"ui_project_close", "ui.project.close", "Close the project through the UI.", true},
	{"ui_project_create", "ui.project.create", "Create a project through the UI.", true},
	{"ui_project_open", "ui.project.open", "Open a project through the UI.", true},

	// Waapi
	{"waapi_get_functions", "waapi.getFunctions", "List all callable Authoring API functions.", false},
	{"waapi_get_schema", "waapi.getSchema", "Get the Authoring API's object/property schema.", false},
	{"waapi_schema_get_args_spec", "waapi.schema.getArgsSpec", "Get a function's argument specification.", false},
	{"waapi_validate_args", "waapi.validateArgs", "Validate arguments against a function's schema.", false},
	{"waapi_get_topics", "waapi.getTopics", "List all subscribable topic URIs.", false},
}

// registerPassthroughVerbs registers the generic one-URI-per-verb table,
// grounded on wwise_mcp.py's _wrap(...) helper: validate nothing beyond
// "args is a map", forward as-is, surface whatever the transport returns.
func registerPassthroughVerbs(r *Registry) {
	for _, e := range passthroughVerbs {
		entry := e
		r.add(Entry{
			Name:      entry.name,
			Signature: "**kwargs",
			Doc:       entry.doc,
			Mutating:  entry.mutating,
			Adapter:   makePassthroughAdapter(entry.uri),
		})
	}
}

func makePassthroughAdapter(uri string) Adapter {
	return func(ctx context.Context, c *Context, args map[string]any) (any, error) {
		return c.call(ctx, uri, args, nil, 0)
	}
}
