package verbs

import (
	"context"
	"sort"

	"github.com/iexmatsu/waapi-toolserver/internal/dispatcher"
)

// topicURIs is the closed enumeration of subscribable topics (spec §6:
// "Topic URIs ... A closed enumeration documented alongside the verb
// registry"), grounded 1:1 on the subscribe_topic_* wrapper list at the
// bottom of original_source/app/scripts/wwise_mcp.py.
var topicURIs = map[string]string{
	"audio_imported":                             "audio.imported",
	"log_item_added":                             "core.log.itemAdded",
	"object_attenuation_curve_changed":           "object.attenuationCurveChanged",
	"object_attenuation_curve_link_changed":      "object.attenuationCurveLinkChanged",
	"object_child_added":                          "object.childAdded",
	"object_child_removed":                        "object.childRemoved",
	"object_created":                              "object.created",
	"object_curve_changed":                        "object.curveChanged",
	"object_name_changed":                         "object.nameChanged",
	"object_notes_changed":                        "object.notesChanged",
	"object_post_deleted":                         "object.postDeleted",
	"object_pre_deleted":                          "object.preDeleted",
	"object_property_changed":                     "object.propertyChanged",
	"object_reference_changed":                    "object.referenceChanged",
	"object_structure_changed":                    "object.structureChanged",
	"profiler_capture_log_item_added":             "profiler.captureLogItemAdded",
	"profiler_game_object_registered":             "profiler.gameObjectRegistered",
	"profiler_game_object_reset":                  "profiler.gameObjectReset",
	"profiler_game_object_unregistered":           "profiler.gameObjectUnregistered",
	"profiler_state_changed":                      "profiler.stateChanged",
	"profiler_switch_changed":                     "profiler.switchChanged",
	"project_loaded":                              "project.loaded",
	"project_post_closed":                         "project.postClosed",
	"project_pre_closed":                          "project.preClosed",
	"project_saved":                                "project.saved",
	"soundbank_generated":                          "soundbank.generated",
	"soundbank_generation_done":                    "soundbank.generationDone",
	"switch_container_assignment_added":           "switchContainer.assignmentAdded",
	"switch_container_assignment_removed":         "switchContainer.assignmentRemoved",
	"transport_state_changed":                      "transport.stateChanged",
	"debug_assert_failed":                          "debug.assertFailed",
	"ui_commands_executed":                         "ui.commandsExecuted",
	"ui_selection_changed":                         "ui.selectionChanged",
}

// registerTopicVerbs registers the generic subscribe/unsubscribe/drain
// verbs plus one typed convenience wrapper per topic in topicURIs, matching
// wwise_mcp.py's subscribe_topic_<name> = _wrap("subscribe_topic_<name>")
// entries.
func registerTopicVerbs(r *Registry) {
	r.add(Entry{
		Name:      "subscribe_topic",
		Signature: "topic, options=None",
		Doc:       "Subscribe to a topic URI from the closed topic enumeration; returns a subscription id.",
		Mutating:  false,
		Adapter:   subscribeTopic,
	})
	r.add(Entry{
		Name:      "unsubscribe_topic",
		Signature: "subscription_id",
		Doc:       "Tear down a previously created subscription.",
		Mutating:  false,
		Adapter:   unsubscribeTopic,
	})
	r.add(Entry{
		Name:      "get_events",
		Signature: "subscription_id, max_count=None, clear=True",
		Doc:       "Drain buffered events for a subscription id without blocking.",
		Mutating:  false,
		Adapter:   getEvents,
	})

	names := make([]string, 0, len(topicURIs))
	for name := range topicURIs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		uri := topicURIs[name]
		verbName := "subscribe_topic_" + name
		topicURI := uri
		r.add(Entry{
			Name:     verbName,
			Doc:      "Subscribe to the " + uri + " topic; returns a subscription id.",
			Mutating: false,
			Adapter: func(ctx context.Context, c *Context, args map[string]any) (any, error) {
				return subscribeToURI(ctx, c, topicURI, optMap(args, "options"))
			},
		})
	}
}

func subscribeToURI(ctx context.Context, c *Context, uri string, options map[string]any) (any, error) {
	d, err := c.Session.Dispatcher()
	if err != nil {
		return nil, err
	}
	reply, err := d.EnqueueSubscribe(uri, options, nil)
	if err != nil {
		return nil, err
	}
	timeout := c.CallTimeout
	return dispatcher.Await(reply, uri, timeout)
}

func subscribeTopic(ctx context.Context, c *Context, args map[string]any) (any, error) {
	topic, err := reqString(args, "topic")
	if err != nil {
		return nil, err
	}
	uri, ok := topicURIs[topic]
	if !ok {
		// Accept a raw URI directly too, for callers that already know it.
		uri = topic
	}
	return subscribeToURI(ctx, c, uri, optMap(args, "options"))
}

func unsubscribeTopic(ctx context.Context, c *Context, args map[string]any) (any, error) {
	subID, err := reqString(args, "subscription_id")
	if err != nil {
		return nil, err
	}
	d, err := c.Session.Dispatcher()
	if err != nil {
		return nil, err
	}
	reply, err := d.EnqueueUnsubscribe(subID)
	if err != nil {
		return nil, err
	}
	return dispatcher.Await(reply, "unsubscribe:"+subID, c.CallTimeout)
}

func getEvents(ctx context.Context, c *Context, args map[string]any) (any, error) {
	subID, err := reqString(args, "subscription_id")
	if err != nil {
		return nil, err
	}
	maxCount := optInt(args, "max_count", 0)
	clear := true
	if v, ok := args["clear"]; ok {
		if b, ok := v.(bool); ok {
			clear = b
		}
	}

	subs, err := c.Session.Subscriptions()
	if err != nil {
		return nil, err
	}
	events := subs.Drain(subID, maxCount, clear)
	if events == nil {
		events = []any{}
	}
	return events, nil
}
