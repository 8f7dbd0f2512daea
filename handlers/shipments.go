package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/freightbooks/freightbooks/ledger"
	"github.com/freightbooks/freightbooks/models"
)

const shipmentSelectQuery = `SELECT s.id, s.reference, s.customer_name, s.customer_gstin, s.place_of_supply,
	s.currency, s.created_at, s.updated_at,
	(SELECT COUNT(*) FROM invoices i WHERE i.shipment_id = s.id),
	(SELECT COUNT(*) FROM payments p WHERE p.shipment_id = s.id),
	COALESCE((SELECT SUM(MAX(i.raw_balance, 0)) FROM invoices i WHERE i.shipment_id = s.id), 0)
	FROM shipments s`

func scanShipment(scanner interface{ Scan(...any) error }) (models.Shipment, error) {
	var s models.Shipment
	err := scanner.Scan(&s.ID, &s.Reference, &s.CustomerName, &s.CustomerGstin, &s.PlaceOfSupply,
		&s.Currency, &s.CreatedAt, &s.UpdatedAt,
		&s.InvoiceCount, &s.PaymentCount, &s.Outstanding)
	return s, err
}

func getShipmentByID(id int) (models.Shipment, error) {
	return scanShipment(DB.QueryRow(shipmentSelectQuery+" WHERE s.id = ?", id))
}

// ListShipments lists all shipments
// @Summary      List shipments
// @Description  Get billing-relevant shipment records with invoice/payment counts and outstanding totals.
// @Tags         shipments
// @Produce      json
// @Param        search  query     string  false  "Search by reference or customer name"
// @Success      200     {object}  Response{data=[]models.Shipment}
// @Router       /shipments [get]
// @Security     BasicAuth
func ListShipments(w http.ResponseWriter, r *http.Request) {
	query := shipmentSelectQuery
	var conditions []string
	var args []any

	if search := r.URL.Query().Get("search"); search != "" {
		conditions = append(conditions, "(s.reference LIKE ? OR s.customer_name LIKE ?)")
		s := "%" + search + "%"
		args = append(args, s, s)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY s.created_at DESC"

	rows, err := DB.Query(query, args...)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer rows.Close()

	shipments := []models.Shipment{}
	for rows.Next() {
		s, err := scanShipment(rows)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		shipments = append(shipments, s)
	}
	writeJSON(w, http.StatusOK, shipments)
}

// GetShipment retrieves a single shipment by ID
// @Summary      Get shipment
// @Tags         shipments
// @Produce      json
// @Param        id   path      int  true  "Shipment ID"
// @Success      200  {object}  Response{data=models.Shipment}
// @Failure      404  {object}  Response{error=string}
// @Router       /shipments/{id} [get]
// @Security     BasicAuth
func GetShipment(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	s, err := getShipmentByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "shipment not found")
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// CreateShipment creates a new shipment record
// @Summary      Create shipment
// @Description  Register a shipment's billing-relevant fields. Invoices snapshot these at creation time.
// @Tags         shipments
// @Accept       json
// @Produce      json
// @Param        shipment  body      models.ShipmentInput  true  "Shipment contents"
// @Success      201       {object}  Response{data=models.Shipment}
// @Failure      400       {object}  Response{error=string}
// @Router       /shipments [post]
// @Security     BasicAuth
func CreateShipment(w http.ResponseWriter, r *http.Request) {
	var input models.ShipmentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	var id int
	err := DB.QueryRow(`INSERT INTO shipments (reference, customer_name, customer_gstin, place_of_supply, currency)
		VALUES (?, ?, ?, ?, ?) RETURNING id`,
		input.Reference, input.CustomerName, input.CustomerGstin, input.PlaceOfSupply, input.Currency).Scan(&id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s, err := getShipmentByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to re-fetch created shipment: "+err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, s)
}

// UpdateShipment updates an existing shipment
// @Summary      Update shipment
// @Description  Update a shipment's billing fields. Issued invoices keep their snapshot and are not altered.
// @Tags         shipments
// @Accept       json
// @Produce      json
// @Param        id        path      int                   true  "Shipment ID"
// @Param        shipment  body      models.ShipmentInput  true  "Updated shipment contents"
// @Success      200       {object}  Response{data=models.Shipment}
// @Failure      400       {object}  Response{error=string}
// @Failure      404       {object}  Response{error=string}
// @Router       /shipments/{id} [put]
// @Security     BasicAuth
func UpdateShipment(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	var input models.ShipmentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	res, err := DB.Exec(`UPDATE shipments SET reference = ?, customer_name = ?, customer_gstin = ?,
		place_of_supply = ?, currency = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		input.Reference, input.CustomerName, input.CustomerGstin, input.PlaceOfSupply, input.Currency, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		writeError(w, http.StatusNotFound, "shipment not found")
		return
	}

	s, err := getShipmentByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to re-fetch updated shipment: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// DeleteShipment deletes a shipment record
// @Summary      Delete shipment
// @Description  Remove a shipment. Blocked while invoices or payments reference it.
// @Tags         shipments
// @Produce      json
// @Param        id   path      int  true  "Shipment ID"
// @Success      200  {object}  Response{data=map[string]string}
// @Failure      404  {object}  Response{error=string}
// @Failure      409  {object}  Response{error=string}
// @Router       /shipments/{id} [delete]
// @Security     BasicAuth
func DeleteShipment(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	err := withTx(DB, func(tx *sql.Tx) error {
		var invoices, payments int
		if err := tx.QueryRow(`SELECT COUNT(*) FROM invoices WHERE shipment_id = ?`, id).Scan(&invoices); err != nil {
			return err
		}
		if err := tx.QueryRow(`SELECT COUNT(*) FROM payments WHERE shipment_id = ?`, id).Scan(&payments); err != nil {
			return err
		}
		if invoices > 0 || payments > 0 {
			return ledger.Conflictf("shipment has %d invoice(s) and %d payment(s); remove them first", invoices, payments)
		}
		res, err := tx.Exec(`DELETE FROM shipments WHERE id = ?`, id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ledger.NotFoundf("shipment %d not found", id)
		}
		return nil
	})
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}
