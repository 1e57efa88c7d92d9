package commands

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fivetwenty-io/apiclient/internal/constants"
	"github.com/fivetwenty-io/apiclient/pkg/apiclient"
	"github.com/spf13/cobra"
)

type requestOptions struct {
	area      string
	data      string
	query     []string
	headers   []string
	file      string
	fieldName string
	fields    []string
}

// rawResult is what the request command prints.
type rawResult struct {
	Status int         `json:"status"         yaml:"status"`
	Body   interface{} `json:"body,omitempty" yaml:"body,omitempty"`
}

// NewRequestCommand creates the raw request command.
func NewRequestCommand() *cobra.Command {
	opts := &requestOptions{}

	cmd := &cobra.Command{
		Use:   "request METHOD PATH",
		Short: "Send a raw request to a backend area",
		Long: `Send a request through the shared client: the stored token is attached and
failures are classified exactly as for the typed commands. With --file the
request is a multipart upload (POST or PUT).`,
		Example: `  apictl request GET /users --query page=2
  apictl request PATCH /users/42 --data '{"role":"admin"}'
  apictl request PUT /users/42/avatar --file me.png --field-name avatar`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := loadServices(cmd)
			if err != nil {
				return err
			}

			client, err := svc.Client(opts.area)
			if err != nil {
				return err
			}

			resp, err := opts.send(cmd, client, strings.ToUpper(args[0]), args[1])
			if err != nil {
				return err
			}

			result := rawResult{Status: resp.StatusCode, Body: decodeBody(resp.Body)}

			return render(cmd.OutOrStdout(), result, propertyTable([][]string{
				{"Status", strconv.Itoa(resp.StatusCode)},
				{"Body", string(resp.Body)},
			}))
		},
	}

	cmd.Flags().StringVar(&opts.area, "area", constants.AreaUsers, "backend area (auth, users, dashboard, admin)")
	cmd.Flags().StringVarP(&opts.data, "data", "d", "", "JSON request body")
	cmd.Flags().StringArrayVarP(&opts.query, "query", "q", nil, "query parameter key=value (repeatable)")
	cmd.Flags().StringArrayVarP(&opts.headers, "header", "H", nil, "header key=value (repeatable)")
	cmd.Flags().StringVar(&opts.file, "file", "", "file to upload as multipart/form-data")
	cmd.Flags().StringVar(&opts.fieldName, "field-name", constants.DefaultUploadFieldName, "multipart field for the file")
	cmd.Flags().StringArrayVar(&opts.fields, "field", nil, "extra multipart field key=value (repeatable)")

	return cmd
}

func (o *requestOptions) send(cmd *cobra.Command, client *apiclient.Client, method, path string) (*apiclient.Response, error) {
	headers, err := parseKeyValues(o.headers)
	if err != nil {
		return nil, err
	}

	query, err := parseKeyValues(o.query)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	for key, value := range query {
		params.Set(key, value)
	}

	if o.file != "" {
		return o.upload(cmd, client, method, withQuery(path, params), headers)
	}

	var body interface{}

	if o.data != "" {
		if !json.Valid([]byte(o.data)) {
			return nil, constants.ErrInvalidDataFlag
		}

		body = json.RawMessage(o.data)
	}

	ctx := cmd.Context()

	switch method {
	case http.MethodGet:
		return client.Get(ctx, path, params, headers)
	case http.MethodDelete:
		return client.Delete(ctx, path, params, headers)
	case http.MethodPost:
		return client.Post(ctx, withQuery(path, params), body, headers)
	case http.MethodPut:
		return client.Put(ctx, withQuery(path, params), body, headers)
	case http.MethodPatch:
		return client.Patch(ctx, withQuery(path, params), body, headers)
	default:
		return nil, fmt.Errorf("%w: %s", constants.ErrUnsupportedMethod, method)
	}
}

func (o *requestOptions) upload(cmd *cobra.Command, client *apiclient.Client, method, path string, headers map[string]string) (*apiclient.Response, error) {
	filePath, err := validateFilePath(o.file)
	if err != nil {
		return nil, err
	}

	fields, err := parseKeyValues(o.fields)
	if err != nil {
		return nil, err
	}

	// filePath has been cleaned and checked above
	// #nosec G304
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	defer func() {
		_ = file.Close()
	}()

	upload := &apiclient.Upload{
		FieldName: o.fieldName,
		FileName:  filepath.Base(filePath),
		Content:   file,
		Fields:    make(map[string]interface{}, len(fields)),
	}

	for key, value := range fields {
		upload.Fields[key] = value
	}

	switch method {
	case http.MethodPost:
		return client.UploadFile(cmd.Context(), path, upload, headers)
	case http.MethodPut:
		return client.UploadFileWithPut(cmd.Context(), path, upload, headers)
	default:
		return nil, fmt.Errorf("%w for upload: %s", constants.ErrUnsupportedMethod, method)
	}
}

// withQuery appends params to a path for verbs that take a body.
func withQuery(path string, params url.Values) string {
	if len(params) == 0 {
		return path
	}

	separator := "?"
	if strings.Contains(path, "?") {
		separator = "&"
	}

	return path + separator + params.Encode()
}

// decodeBody returns the JSON value of body, or the raw text when it is not JSON.
func decodeBody(body []byte) interface{} {
	if len(body) == 0 {
		return nil
	}

	var value interface{}
	if json.Unmarshal(body, &value) != nil {
		return string(body)
	}

	return value
}
