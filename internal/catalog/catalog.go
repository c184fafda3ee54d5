// Package catalog enumerates the command-line entry points the installed
// distribution must expose. The list is an external contract: when the
// distribution adds or drops a console script, this enumeration must be
// updated to match, and the verify stage re-checks it on every run.
package catalog

// Commands lists the expected entry points in verification order. The
// order is stable so a failed run always reports the same first-missing
// name for the same breakage.
var Commands = []string{
	"sct_analyze_lesion",
	"sct_analyze_texture",
	"sct_apply_transfo",
	"sct_average_data_across_dimension",
	"sct_compute_ernst_angle",
	"sct_compute_hausdorff_distance",
	"sct_compute_mscc",
	"sct_compute_mtr",
	"sct_compute_mtsat",
	"sct_compute_snr",
	"sct_convert",
	"sct_create_mask",
	"sct_crop_image",
	"sct_deepseg",
	"sct_deepseg_gm",
	"sct_deepseg_lesion",
	"sct_deepseg_sc",
	"sct_denoising_onlm",
	"sct_detect_pmj",
	"sct_dice_coefficient",
	"sct_dmri_compute_bvalue",
	"sct_dmri_compute_dti",
	"sct_dmri_concat_b0_and_dwi",
	"sct_dmri_concat_bvals",
	"sct_dmri_concat_bvecs",
	"sct_dmri_denoise_patch2self",
	"sct_dmri_display_bvecs",
	"sct_dmri_moco",
	"sct_dmri_separate_b0_and_dwi",
	"sct_dmri_transpose_bvecs",
	"sct_download_data",
	"sct_extract_metric",
	"sct_flatten_sagittal",
	"sct_fmri_compute_tsnr",
	"sct_fmri_moco",
	"sct_get_centerline",
	"sct_image",
	"sct_label_utils",
	"sct_label_vertebrae",
	"sct_maths",
	"sct_merge_images",
	"sct_process_segmentation",
	"sct_propseg",
	"sct_qc",
	"sct_register_multimodal",
	"sct_register_to_template",
	"sct_resample",
	"sct_run_batch",
	"sct_smooth_spinalcord",
	"sct_straighten_spinalcord",
	"sct_testing",
	"sct_version",
	"sct_warp_template",
	"isct_convert_binary_to_trilinear",
	"isct_minc2volume-viewer",
	"isct_test_ants",
}

// Catalogue returns the verification list: the built-in commands followed
// by any extras from configuration, with duplicates dropped and first
// occurrence order preserved.
func Catalogue(extra []string) []string {
	seen := make(map[string]struct{}, len(Commands)+len(extra))
	out := make([]string, 0, len(Commands)+len(extra))
	for _, lists := range [][]string{Commands, extra} {
		for _, name := range lists {
			if name == "" {
				continue
			}
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	return out
}
