package reports

import (
	"io/ioutil"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gopkg.in/yaml.v2"

	"github.com/finastack/folio/models"
)

type dateTriangleEntry struct {
	Name              string   `yaml:"name"`
	Class             int32    `yaml:"class"`
	AccountingDate    string   `yaml:"accounting_date"`
	CashDate          string   `yaml:"cash_date"`
	ReportDate        string   `yaml:"report_date"`
	PositionSize      string   `yaml:"position_size"`
	CashConsideration string   `yaml:"cash_consideration"`
	Postings          []string `yaml:"postings"`
}

type DateTriangleSuite struct {
	suite.Suite
	entries []dateTriangleEntry
}

func TestDateTriangleSuite(t *testing.T) {
	suite.Run(t, new(DateTriangleSuite))
}

func (s *DateTriangleSuite) SetupSuite() {
	raw, err := ioutil.ReadFile("./fixtures/date_triangle.yaml")
	s.Require().NoError(err)
	s.Require().NoError(yaml.Unmarshal(raw, &s.entries))
	s.Require().NotEmpty(s.entries)
}

func (s *DateTriangleSuite) date(value string) time.Time {
	d, err := time.Parse("2006-01-02", value)
	s.Require().NoError(err)
	return d
}

func (s *DateTriangleSuite) decimal(value string) decimal.Decimal {
	d, err := decimal.NewFromString(value)
	s.Require().NoError(err)
	return d
}

func (s *DateTriangleSuite) TestEffectivePostings() {
	for _, entry := range s.entries {
		entry := entry

		s.T().Run(entry.Name, func(t *testing.T) {
			tx := &models.Transaction{
				TransactionClass:      models.TransactionClass(entry.Class),
				InstrumentID:          41,
				TransactionCurrencyID: 2,
				SettlementCurrencyID:  1,
				PositionSizeWithSign:  s.decimal(entry.PositionSize),
				CashConsideration:     s.decimal(entry.CashConsideration),
				AccountingDate:        s.date(entry.AccountingDate),
				CashDate:              s.date(entry.CashDate),
				AccountPositionID:     11,
				AccountCashID:         12,
				AccountInterimID:      13,
			}

			postings := EffectivePostings(tx, s.date(entry.ReportDate))
			s.Require().Len(postings, len(entry.Postings))

			for i, line := range entry.Postings {
				parts := strings.Split(line, ",")
				s.Require().Len(parts, 4)

				account, err := strconv.ParseUint(strings.TrimSpace(parts[1]), 10, 64)
				s.Require().NoError(err)

				s.EqualValues(strings.TrimSpace(parts[0]), postings[i].Leg)
				s.EqualValues(account, postings[i].AccountID)
				s.EqualValues(strings.TrimSpace(parts[2]), postings[i].ItemType)
				s.EqualValues(strings.TrimSpace(parts[3]), postings[i].Amount.String())
			}
		})
	}
}

func TestEffectivePostingsStrategySlots(t *testing.T) {
	tx := &models.Transaction{
		TransactionClass:     models.ClassBuy,
		InstrumentID:         41,
		SettlementCurrencyID: 1,
		PositionSizeWithSign: decimal.NewFromInt(10),
		CashConsideration:    decimal.NewFromInt(-100),
		AccountingDate:       time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		CashDate:             time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		AccountPositionID:    11,
		AccountCashID:        12,
		AccountInterimID:     13,
		Strategy1PositionID:  31,
		Strategy1CashID:      131,
		Strategy2PositionID:  32,
		Strategy2CashID:      132,
		Strategy3PositionID:  33,
		Strategy3CashID:      133,
	}

	postings := EffectivePostings(tx, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	assert.Len(t, postings, 2)

	assert.Equal(t, uint64(31), postings[0].Strategy1ID)
	assert.Equal(t, uint64(32), postings[0].Strategy2ID)
	assert.Equal(t, uint64(33), postings[0].Strategy3ID)

	assert.Equal(t, uint64(131), postings[1].Strategy1ID)
	assert.Equal(t, uint64(132), postings[1].Strategy2ID)
	assert.Equal(t, uint64(133), postings[1].Strategy3ID)
}

func TestEffectivePostingsTransferOutCarriesCashStrategies(t *testing.T) {
	tx := &models.Transaction{
		TransactionClass:     models.ClassTransfer,
		InstrumentID:         41,
		PositionSizeWithSign: decimal.NewFromInt(10),
		AccountingDate:       time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		CashDate:             time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		AccountPositionID:    11,
		AccountCashID:        12,
		AccountInterimID:     13,
		Strategy1PositionID:  31,
		Strategy1CashID:      131,
	}

	postings := EffectivePostings(tx, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	assert.Len(t, postings, 2)

	assert.Equal(t, uint64(31), postings[0].Strategy1ID)
	assert.Equal(t, "10", postings[0].Amount.String())
	assert.Equal(t, uint64(131), postings[1].Strategy1ID)
	assert.Equal(t, "-10", postings[1].Amount.String())
}

func TestEqualDatesAlwaysSettled(t *testing.T) {
	tx := &models.Transaction{
		AccountingDate: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		CashDate:       time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
	}

	// report date before, on and after the shared date
	for _, day := range []int{5, 10, 15} {
		state := classify(tx, time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC))
		assert.Equal(t, stateSettled, state)
	}
}
