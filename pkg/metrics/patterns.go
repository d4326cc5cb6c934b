package metrics

import "strings"

// marker maps a pattern tag to text fragments that suggest it. Matching is
// plain substring search and is approximate: a fragment in a comment or
// string counts the same as real usage.
type marker struct {
	Tag       string
	Fragments []string
}

var markers = []marker{
	{"riverpod", []string{"package:flutter_riverpod", "package:riverpod", "package:hooks_riverpod", "ConsumerWidget", "@riverpod"}},
	{"bloc", []string{"package:flutter_bloc", "package:bloc/", "extends Bloc<", "extends Cubit<"}},
	{"provider", []string{"package:provider/", "ChangeNotifierProvider"}},
	{"getx", []string{"package:get/", "GetxController", "Obx("}},
	{"mobx", []string{"package:mobx/", "@observable"}},
	{"redux", []string{"package:redux/", "package:flutter_redux"}},
	{"go-router", []string{"package:go_router", "GoRouter("}},
	{"auto-route", []string{"package:auto_route", "@RoutePage"}},
	{"get-it", []string{"package:get_it", "GetIt.instance", "GetIt.I"}},
	{"freezed", []string{"package:freezed_annotation", "@freezed"}},
	{"json-serializable", []string{"@JsonSerializable"}},
	{"mvvm", []string{"ViewModel"}},
	{"repository", []string{"Repository"}},
	{"clean-architecture", []string{"UseCase"}},
	{"cobra", []string{"github.com/spf13/cobra"}},
	{"gin", []string{"github.com/gin-gonic/gin"}},
}

// DetectPatterns returns the tags whose markers occur in any of the texts,
// in marker table order.
func DetectPatterns(texts ...string) []string {
	found := make(map[string]bool)
	for _, text := range texts {
		for _, m := range markers {
			if found[m.Tag] {
				continue
			}
			for _, frag := range m.Fragments {
				if strings.Contains(text, frag) {
					found[m.Tag] = true
					break
				}
			}
		}
	}

	tags := make([]string, 0, len(found))
	for _, m := range markers {
		if found[m.Tag] {
			tags = append(tags, m.Tag)
		}
	}
	return tags
}
