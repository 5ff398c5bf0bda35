package http

import (
	"html/template"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fyrsmithlabs/interviewd/internal/negotiation"
)

type formPage struct {
	Token       string
	Interviewer string
	Date        string
}

type resultPage struct {
	Interviewer string
	Slots       []negotiation.Slot
	Delivered   bool
}

// The pages are deliberately self-contained: no static assets, so the
// server stays a single binary.
var formTmpl = template.Must(template.New("form").Parse(`<html>
  <head>
    <title>Submit Available Slots</title>
    <style>
      body { font-family: Arial, sans-serif; background: #f7f7f7; }
      .container { max-width: 500px; margin: 40px auto; background: #fff; padding: 24px; border-radius: 8px; box-shadow: 0 2px 8px #0001; }
      h2 { color: #1976d2; }
      .date-info { background: #e3f2fd; padding: 12px; border-radius: 4px; margin-bottom: 20px; }
      label { display: block; margin-top: 16px; font-weight: bold; }
      input[type="time"] { margin-right: 8px; padding: 8px; border: 1px solid #ddd; border-radius: 4px; }
      .time-slot { background: #f5f5f5; padding: 12px; border-radius: 4px; margin-bottom: 8px; }
      button { margin-top: 24px; background: #1976d2; color: #fff; border: none; padding: 12px 24px; border-radius: 5px; cursor: pointer; font-size: 16px; }
      button:hover { background: #1565c0; }
    </style>
  </head>
  <body>
    <div class="container">
      <h2>Submit Your Available Time Slots</h2>
      <div class="date-info">
        <strong>Interview Date: {{.Date}}</strong><br>
        Please provide your available time slots for this date.
      </div>
      <form method="POST" action="/submit-slot">
        <input type="hidden" name="token" value="{{.Token}}" />
        <input type="hidden" name="interviewer" value="{{.Interviewer}}" />
        <input type="hidden" name="proposed_date" value="{{.Date}}" />
        <div class="time-slot">
          <label>Time Slot 1 (Required):</label>
          <input type="time" name="slot_start_1" required> to <input type="time" name="slot_end_1" required>
        </div>
        <div class="time-slot">
          <label>Time Slot 2 (Optional):</label>
          <input type="time" name="slot_start_2"> to <input type="time" name="slot_end_2">
        </div>
        <div class="time-slot">
          <label>Time Slot 3 (Optional):</label>
          <input type="time" name="slot_start_3"> to <input type="time" name="slot_end_3">
        </div>
        <button type="submit">Submit Available Slots</button>
      </form>
    </div>
  </body>
</html>
`))

var resultTmpl = template.Must(template.New("result").Parse(`<div style="font-family:Arial,sans-serif;max-width:500px;margin:40px auto;background:#fff;padding:24px;border-radius:8px;box-shadow:0 2px 8px #0001;">
{{if .Delivered}}
  <h2 style="color:#4caf50;">Success!</h2>
  <p>Thank you <strong>{{.Interviewer}}</strong>! Your available time slots have been submitted:</p>
{{else}}
  <h2 style="color:#ff9800;">Saved, Not Delivered</h2>
  <p>Your slots have been saved, but we couldn't automatically notify the system. Please contact the recruiter.</p>
  <p><strong>Your submitted slots:</strong></p>
{{end}}
  <ul>
{{range .Slots}}    <li>{{.Date}} from {{.StartTime}} to {{.EndTime}}</li>
{{end}}  </ul>
{{if .Delivered}}  <p>The candidate will be notified of these available slots shortly.</p>
{{end}}</div>
`))

func renderForm(c echo.Context, page formPage) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(http.StatusOK)
	return formTmpl.Execute(c.Response(), page)
}

func renderSaved(c echo.Context, page resultPage) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(http.StatusOK)
	return resultTmpl.Execute(c.Response(), page)
}
