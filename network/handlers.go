package network

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/luca-patrignani/pow-ledger/consensus"
	"github.com/luca-patrignani/pow-ledger/ledger"
)

type mineResponse struct {
	Message      string               `json:"message"`
	Index        uint64               `json:"index"`
	Timestamp    int64                `json:"timestamp"`
	Date         string               `json:"date"`
	Nonce        uint64               `json:"nonce"`
	Transactions []ledger.Transaction `json:"transactions"`
	PrevHash     string               `json:"previous_hash"`
	Hash         string               `json:"hash"`
}

type chainResponse struct {
	Length int            `json:"length"`
	Chain  []ledger.Block `json:"chain"`
}

type utxosResponse struct {
	Length int                  `json:"length"`
	Utxos  []ledger.Transaction `json:"utxos"`
}

type validResponse struct {
	Message   string               `json:"message"`
	Valid     bool                 `json:"valid"`
	Violation *consensus.Violation `json:"violation,omitempty"`
}

type transactionRequest struct {
	Sender   string           `json:"sender" binding:"required"`
	Receiver string           `json:"receiver" binding:"required"`
	Amount   *decimal.Decimal `json:"amount"`
}

// GET /mine_block
func (s *Server) mineBlock(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), s.mineTimeout)
	defer cancel()

	block, err := s.node.MineBlock(ctx)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, consensus.ErrSearchTimedOut):
			status = http.StatusGatewayTimeout
		case errors.Is(err, consensus.ErrSearchCancelled):
			status = http.StatusServiceUnavailable
		case errors.Is(err, ledger.ErrStalePredecessor):
			status = http.StatusConflict
		}
		s.logger.Error("mining failed", "error", err)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, mineResponse{
		Message:      RewardMessage,
		Index:        block.Index,
		Timestamp:    block.Timestamp,
		Date:         block.Date(),
		Nonce:        block.Nonce,
		Transactions: block.Transactions,
		PrevHash:     block.PrevHash,
		Hash:         block.Hash,
	})
}

// GET /get_chain
func (s *Server) getChain(c *gin.Context) {
	chain := s.node.Chain()
	c.JSON(http.StatusOK, chainResponse{Length: len(chain), Chain: chain})
}

// GET /get_utxos
func (s *Server) getUtxos(c *gin.Context) {
	pending := s.node.Pending()
	c.JSON(http.StatusOK, utxosResponse{Length: len(pending), Utxos: pending})
}

// GET /is_valid
func (s *Server) isValid(c *gin.Context) {
	report := s.node.Validate()
	response := validResponse{Valid: report.Valid, Violation: report.Violation}
	if report.Valid {
		response.Message = "Blockchain is valid."
	} else {
		response.Message = "Blockchain is not valid."
	}
	c.JSON(http.StatusOK, response)
}

// POST /add_transaction
func (s *Server) addTransaction(c *gin.Context) {
	var req transactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Amount == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount is required"})
		return
	}

	tx, err := s.pool.AddTransaction(req.Sender, req.Receiver, *req.Amount)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ledger.ErrInvalidTransaction) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, tx)
}
