package promptapi

import (
	"encoding/json"
	"net/http"
)

func decodeJSON(req *http.Request, out any) error {
	defer req.Body.Close()
	return json.NewDecoder(req.Body).Decode(out)
}
