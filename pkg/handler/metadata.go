package handler

import (
	"encoding/base64"
	"strings"
)

// ParseMetadataHeader parses the Upload-Metadata header as defined by the
// tus creation extension, e.g.
// "Upload-Metadata: name bHVucmpzLnBuZw==,type aW1hZ2UvcG5n". Entries
// without a value decode to an empty string; entries that fail to parse
// (more than one space, invalid base64) are skipped silently. Duplicate
// keys: the last one wins.
func ParseMetadataHeader(header string) MetaData {
	meta := make(MetaData)

	for _, element := range strings.Split(header, ",") {
		element = strings.TrimSpace(element)
		if element == "" {
			continue
		}

		parts := strings.Split(element, " ")
		if len(parts) > 2 {
			continue
		}

		key := parts[0]
		if key == "" {
			continue
		}

		value := ""
		if len(parts) == 2 {
			dec, err := base64.StdEncoding.DecodeString(parts[1])
			if err != nil {
				continue
			}
			value = string(dec)
		}

		meta[key] = value
	}

	return meta
}
