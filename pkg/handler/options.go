package handler

import (
	"net/http"
	"strconv"
)

func (h *Handler) options(w http.ResponseWriter, r *http.Request) {
	h.sendResp(w, HTTPResponse{
		StatusCode: 200,
		Header: HTTPHeader{
			"Tus-Version":   tusVersion,
			"Tus-Max-Size":  strconv.FormatInt(h.config.MaxSize, 10),
			"Tus-Extension": tusExtensions,
		},
	})
}
