package reporting

import (
	"context"
	"strconv"
)

type Service struct {
	lines       LineSource
	doctorShare float64
	clinicShare float64
}

func NewService(lines LineSource, doctorShare, clinicShare float64) *Service {
	return &Service{lines: lines, doctorShare: doctorShare, clinicShare: clinicShare}
}

func (s *Service) load(ctx context.Context, options map[string]string) ([]Line, Context, error) {
	f, err := FromOptions(options)
	if err != nil {
		return nil, Context{}, err
	}
	lines, err := s.lines.Lines(ctx, f)
	if err != nil {
		return nil, Context{}, err
	}
	return lines, Context{Filter: f, DoctorShare: s.doctorShare, ClinicShare: s.clinicShare}, nil
}

// withPatient pins the patient filter to the path parameter, overriding any
// conflicting query option.
func withPatient(patientID int64, options map[string]string) map[string]string {
	merged := make(map[string]string, len(options)+1)
	for k, v := range options {
		merged[k] = v
	}
	merged["patient_id"] = strconv.FormatInt(patientID, 10)
	return merged
}

func (s *Service) PatientHistory(ctx context.Context, patientID int64, options map[string]string) (*PatientHistoryReport, error) {
	lines, _, err := s.load(ctx, withPatient(patientID, options))
	if err != nil {
		return nil, err
	}
	report := BuildPatientHistoryReport(lines)
	return &report, nil
}

func (s *Service) PatientPayments(ctx context.Context, patientID int64, options map[string]string) (*PatientPaymentReport, error) {
	lines, _, err := s.load(ctx, withPatient(patientID, options))
	if err != nil {
		return nil, err
	}
	report := BuildPatientPaymentReport(lines)
	return &report, nil
}

func (s *Service) DoctorSummary(ctx context.Context, options map[string]string) (*DoctorSummaryReport, error) {
	lines, _, err := s.load(ctx, options)
	if err != nil {
		return nil, err
	}
	report := BuildDoctorSummaryReport(lines)
	return &report, nil
}

func (s *Service) ClinicSummary(ctx context.Context, options map[string]string) (*ClinicSummaryReport, error) {
	lines, rc, err := s.load(ctx, options)
	if err != nil {
		return nil, err
	}
	report := BuildClinicSummaryReport(lines, rc)
	return &report, nil
}

func (s *Service) DoctorDailyBonus(ctx context.Context, options map[string]string) (*DoctorDailyBonusReport, error) {
	lines, _, err := s.load(ctx, options)
	if err != nil {
		return nil, err
	}
	report := BuildDoctorDailyBonusReport(lines)
	return &report, nil
}
