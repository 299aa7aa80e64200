package procedures

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/finastack/folio/expression"
	"github.com/finastack/folio/gateway"
	"github.com/finastack/folio/messages"
	"github.com/finastack/folio/models"
	"github.com/finastack/folio/schedules"
	"github.com/finastack/folio/types"
)

const rsaKeyBits = 2048

// RunDataProcedure sends the provider a data-file request and leaves
// the instance PENDING. The terminal status is set by the callback.
func (e *Engine) RunDataProcedure(instanceID uint64) error {
	started := time.Now()

	instance := &models.RequestDataFileProcedureInstance{}
	if err := e.db.First(instance, "id = ?", instanceID).Error; err != nil {
		return err
	}
	if models.TerminalProcedureStatus(instance.Status) {
		return nil
	}

	procedure := &models.RequestDataFileProcedure{}
	if err := e.db.First(procedure, "id = ?", instance.ProcedureID).Error; err != nil {
		return err
	}

	publicPEM, privatePEM, err := generateKeypair()
	if err != nil {
		return err
	}

	requestID := uuid.New().String()
	token, err := gateway.SignUserToken(instance.TenantID, requestID)
	if err != nil {
		return err
	}

	from, to := e.dataWindow(procedure, time.Now().UTC())
	request := &gateway.DataFileRequest{
		ID:          requestID,
		User:        gateway.DataFileUser{Token: token},
		PublicKey:   publicPEM,
		DateFrom:    from.Format(expression.DateLayout),
		DateTo:      to.Format(expression.DateLayout),
		Provider:    procedure.Provider,
		SchemeName:  procedure.SchemeName,
		SchemeType:  procedure.SchemeType,
		CallbackURL: os.Getenv("CALLBACK_BASE_URL") + "/api/v1/import/data-file/callback",
	}

	requestData, _ := json.Marshal(request)
	requestText := string(requestData)
	if err := e.db.Model(instance).Updates(map[string]interface{}{
		"status":       models.ProcedureStatusPending,
		"request_id":   requestID,
		"public_key":   publicPEM,
		"private_key":  privatePEM,
		"request_data": &requestText,
	}).Error; err != nil {
		return err
	}
	instance.Status = models.ProcedureStatusPending
	instance.RequestID = requestID
	instance.PrivateKey = privatePEM

	if err := e.dataFiles.Request(request); err != nil {
		text := err.Error()
		e.db.Model(instance).Updates(map[string]interface{}{
			"status":        models.ProcedureStatusError,
			"error_message": &text,
		})
		instance.Status = models.ProcedureStatusError
		messages.Publish(instance.TenantID, types.MessageError, "imports",
			"Data-file request failed",
			fmt.Sprintf("procedure %s instance %d: %v", procedure.UserCode, instance.ID, err))
		e.metric("data_procedure", instance.TenantID, models.ProcedureStatusError, started)
		e.runNext(instance.ScheduleInstanceID, models.ProcedureStatusError)
		return nil
	}

	e.metric("data_procedure", instance.TenantID, models.ProcedureStatusPending, started)
	return nil
}

// HandleDataCallback processes an asynchronous data-file result:
// verify the token, decrypt the payload, spawn the child import task,
// flip the instance terminal. Replays of a finished instance return
// without effect.
func (e *Engine) HandleDataCallback(response *gateway.DataFileResponse) error {
	claims, err := gateway.VerifyUserToken(response.User.Token)
	if err != nil {
		return err
	}
	if id, ok := claims["request_id"].(string); !ok || id != response.ID {
		return errors.New("callback token does not match request")
	}

	instance := &models.RequestDataFileProcedureInstance{}
	if err := e.db.First(instance, "request_id = ?", response.ID).Error; err != nil {
		return err
	}
	if models.TerminalProcedureStatus(instance.Status) {
		return nil
	}

	procedure := &models.RequestDataFileProcedure{}
	if err := e.db.First(procedure, "id = ?", instance.ProcedureID).Error; err != nil {
		return err
	}

	if response.ErrorStatus != nil {
		text := "provider error"
		if response.ErrorMessage != nil {
			text = *response.ErrorMessage
		}
		e.db.Model(instance).Updates(map[string]interface{}{
			"status":        models.ProcedureStatusError,
			"error_message": &text,
		})
		messages.Publish(instance.TenantID, types.MessageError, "imports",
			"Data-file delivery failed", text)
		e.runNext(instance.ScheduleInstanceID, models.ProcedureStatusError)
		return nil
	}

	decrypted, err := decryptData(instance.PrivateKey, response.Data)
	if err != nil {
		text := err.Error()
		e.db.Model(instance).Updates(map[string]interface{}{
			"status":        models.ProcedureStatusError,
			"error_message": &text,
		})
		e.runNext(instance.ScheduleInstanceID, models.ProcedureStatusError)
		return nil
	}

	kind := models.ImportTaskSimple
	if procedure.SchemeType == "transaction_import" {
		kind = models.ImportTaskTransaction
	}
	payloadText := string(decrypted)
	task := &models.ImportTask{
		TenantID: instance.TenantID,
		Kind:     kind,
		Status:   models.ProcedureStatusInit,
		Payload:  &payloadText,
	}
	if err := e.db.Create(task).Error; err != nil {
		return err
	}

	raw, _ := json.Marshal(schedules.TaskPayload{
		TenantID:            instance.TenantID,
		ProcedureInstanceID: task.ID,
	})
	if err := e.submit.Submit(kind, raw); err != nil {
		return err
	}

	responseText := string(decrypted)
	e.db.Model(instance).Updates(map[string]interface{}{
		"status":         models.ProcedureStatusDone,
		"response_data":  &responseText,
		"linked_task_id": &task.ID,
	})
	instance.Status = models.ProcedureStatusDone

	messages.Publish(instance.TenantID, types.MessageSuccess, "imports",
		"Data file received",
		fmt.Sprintf("procedure %s instance %d spawned %s task %d",
			procedure.UserCode, instance.ID, kind, task.ID))
	e.runNext(instance.ScheduleInstanceID, models.ProcedureStatusDone)
	return nil
}

func (e *Engine) dataWindow(procedure *models.RequestDataFileProcedure, now time.Time) (time.Time, time.Time) {
	yesterday := now.AddDate(0, 0, -1).Truncate(24 * time.Hour)

	from := yesterday
	if procedure.DateFrom != nil {
		from = *procedure.DateFrom
	}
	if procedure.DateFromExpr != nil {
		if v, err := e.evaluator.SafeEval(*procedure.DateFromExpr, map[string]interface{}{
			"now": now.Format(expression.DateLayout),
		}); err == nil {
			if d, parseErr := parseDateValue(v); parseErr == nil {
				from = d
			}
		}
	}

	to := yesterday
	if procedure.DateTo != nil {
		to = *procedure.DateTo
	}
	if procedure.DateToExpr != nil {
		if v, err := e.evaluator.SafeEval(*procedure.DateToExpr, map[string]interface{}{
			"now": now.Format(expression.DateLayout),
		}); err == nil {
			if d, parseErr := parseDateValue(v); parseErr == nil {
				to = d
			}
		}
	}

	if to.Before(from) {
		to = from
	}
	return from, to
}

func parseDateValue(v interface{}) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return x, nil
	case string:
		return time.Parse(expression.DateLayout, x)
	}
	return time.Time{}, errors.New("not a date")
}

func generateKeypair() (publicPEM, privatePEM string, err error) {
	key, err := rsa.GenerateKey(rand.Reader, rsaKeyBits)
	if err != nil {
		return "", "", err
	}

	privatePEM = string(pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	}))

	publicBytes, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return "", "", err
	}
	publicPEM = string(pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: publicBytes,
	}))

	return publicPEM, privatePEM, nil
}

// decryptData reassembles the callback payload: each data element may
// carry an RSA-encrypted base64 chunk under "payload", or be plain
// JSON when the provider skipped encryption.
func decryptData(privatePEM string, data []map[string]interface{}) ([]byte, error) {
	block, _ := pem.Decode([]byte(privatePEM))
	var key *rsa.PrivateKey
	if block != nil {
		parsed, err := x509.ParsePKCS1PrivateKey(block.Bytes)
		if err != nil {
			return nil, err
		}
		key = parsed
	}

	out := make([]interface{}, 0, len(data))
	for _, element := range data {
		chunk, encrypted := element["payload"].(string)
		if !encrypted || key == nil {
			out = append(out, element)
			continue
		}
		raw, err := base64.StdEncoding.DecodeString(chunk)
		if err != nil {
			return nil, err
		}
		plain, err := rsa.DecryptPKCS1v15(rand.Reader, key, raw)
		if err != nil {
			return nil, err
		}
		var decoded interface{}
		if err := json.Unmarshal(plain, &decoded); err != nil {
			decoded = string(plain)
		}
		out = append(out, decoded)
	}

	return json.Marshal(out)
}
